package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"part-scout-go/internal/config"
	"part-scout-go/internal/fetcher"
	"part-scout-go/internal/ingest"
	"part-scout-go/internal/metrics"
)

// Ingestor is the slice of the coordinator the scheduler needs.
type Ingestor interface {
	Ingest(ctx context.Context, raw []byte, userID string) (*ingest.Summary, error)
}

// Scheduler polls the alert mailbox on an interval and pushes every
// fetched message through the ingestion pipeline.
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	fetcher   fetcher.EmailFetcher
	ingestor  Ingestor
	ownerID   string
	metrics   *metrics.Metrics
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg *config.SchedulerConfig, f fetcher.EmailFetcher, ingestor Ingestor, ownerID string, m *metrics.Metrics) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:     cron.New(cron.WithSeconds()),
		config:   cfg,
		fetcher:  f,
		ingestor: ingestor,
		ownerID:  ownerID,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if s.ctx.Err() != nil {
		s.ctx, s.cancel = context.WithCancel(context.Background())
	}

	schedule := fmt.Sprintf("0 */%d * * * *", s.config.IntervalMinutes)

	entryID, err := s.cron.AddFunc(schedule, s.pollMailbox)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.entryID = entryID
	s.cron.Start()
	s.isRunning = true

	logrus.Infof("Scheduler started with interval: %d minutes", s.config.IntervalMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.cancel()
	ctx := s.cron.Stop()

	select {
	case <-ctx.Done():
		logrus.Info("Scheduler stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Scheduler stop timeout, forcing shutdown")
	}

	s.cron.Remove(s.entryID)
	s.isRunning = false
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// pollMailbox is the main processing function that runs periodically
func (s *Scheduler) pollMailbox() {
	s.wg.Add(1)
	defer s.wg.Done()

	s.mu.RLock()
	if !s.isRunning {
		s.mu.RUnlock()
		logrus.Info("Scheduler not running, skipping poll cycle")
		return
	}
	s.mu.RUnlock()

	startTime := time.Now()
	s.metrics.MailboxPolls.Inc()

	raws, err := s.fetcher.FetchNewEmails(s.ctx)
	if err != nil {
		logrus.Errorf("Failed to fetch emails: %v", err)
		return
	}

	logrus.Infof("Fetched %d new emails", len(raws))

	for _, raw := range raws {
		if err := s.processEmail(raw); err != nil {
			logrus.Errorf("Failed to process email: %v", err)
		}
	}

	logrus.Infof("Mailbox poll cycle completed in %v", time.Since(startTime))
}

// processEmail runs one fetched message through the ingestion
// pipeline. Messages that are not marketplace alerts fail with input
// errors and are skipped; re-fetched alerts are no-ops thanks to
// content-hash idempotency.
func (s *Scheduler) processEmail(raw []byte) error {
	select {
	case <-s.ctx.Done():
		return fmt.Errorf("context cancelled")
	default:
	}

	summary, err := s.ingestor.Ingest(s.ctx, raw, s.ownerID)
	if err != nil {
		if errors.Is(err, ingest.ErrNoHTMLContent) || errors.Is(err, ingest.ErrNoListingsFound) {
			logrus.Debugf("Skipping non-alert email: %v", err)
			return nil
		}
		return fmt.Errorf("failed to ingest email: %w", err)
	}

	if summary.AlreadyProcessed {
		logrus.Debug("Fetched email already processed, skipping")
		return nil
	}

	logrus.Infof("Ingested fetched email: %d found, %d created, %d matched",
		summary.ListingsFound, summary.ListingsCreated, summary.ListingsMatched)
	return nil
}

// RunOnce runs the mailbox poll once (for manual triggering)
func (s *Scheduler) RunOnce() error {
	logrus.Info("Running mailbox poll once")
	s.pollMailbox()
	return nil
}

// GetNextRun returns the time of the next scheduled run
func (s *Scheduler) GetNextRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Next
}

// GetLastRun returns the time of the last run
func (s *Scheduler) GetLastRun() time.Time {
	if !s.IsRunning() {
		return time.Time{}
	}

	entry := s.cron.Entry(s.entryID)
	return entry.Prev
}

// Wait waits for in-flight poll cycles to finish
func (s *Scheduler) Wait() {
	s.wg.Wait()
}
