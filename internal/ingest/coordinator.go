// Package ingest orchestrates the email-to-listing pipeline: decode
// the uploaded .eml, extract listing candidates, match them against
// the owner's parts and alerts, and persist the results exactly once
// per distinct email content.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"part-scout-go/internal/email"
	"part-scout-go/internal/listings"
	"part-scout-go/internal/matcher"
	"part-scout-go/internal/metrics"
	"part-scout-go/internal/models"
)

// Source recorded on every listing and ingestion row created here.
const Source = "olx_email"

// Store is the persistence surface the coordinator depends on. The
// implementation must enforce uniqueness on listing URL and ingestion
// content hash and report violations as ErrDuplicateListing /
// ErrDuplicateIngestion.
type Store interface {
	FindIngestionByHash(ctx context.Context, contentHash string) (*models.EmailIngestion, error)
	RecordIngestion(ctx context.Context, ingestion *models.EmailIngestion) error
	PartsForUser(ctx context.Context, userID string) ([]models.Part, error)
	CreateListing(ctx context.Context, listing *models.Listing) error
}

// Summary reports one ingestion run. When AlreadyProcessed is set the
// counts echo the previously recorded run and nothing was written.
type Summary struct {
	ListingsFound    int
	ListingsCreated  int
	ListingsMatched  int
	AlreadyProcessed bool
}

// Coordinator runs the ingestion pipeline against an injected store.
type Coordinator struct {
	store     Store
	extractor *listings.Extractor
	metrics   *metrics.Metrics
}

// NewCoordinator creates a coordinator backed by the given store.
func NewCoordinator(store Store, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		store:     store,
		extractor: listings.NewExtractor(),
		metrics:   m,
	}
}

// ContentHash returns the idempotency key for raw email bytes: the hex
// SHA-256 digest, byte-for-byte sensitive.
func ContentHash(raw []byte) string {
	digest := sha256.Sum256(raw)
	return hex.EncodeToString(digest[:])
}

// Ingest processes one email for the given owner. Repeat calls with
// identical bytes are read-only no-ops returning the recorded count.
// A duplicate listing URL is skipped and not counted as created; any
// other persistence error aborts the run before the ingestion record
// is written, so the same bytes can be retried.
func (c *Coordinator) Ingest(ctx context.Context, raw []byte, userID string) (*Summary, error) {
	decoded := email.Decode(raw)
	if decoded.HTML == "" {
		return nil, ErrNoHTMLContent
	}

	parsed := c.extractor.Extract(decoded.HTML, decoded.Date)
	if len(parsed) == 0 {
		return nil, ErrNoListingsFound
	}

	contentHash := ContentHash(raw)

	existing, err := c.store.FindIngestionByHash(ctx, contentHash)
	if err != nil {
		return nil, fmt.Errorf("failed to look up ingestion record: %w", err)
	}
	if existing != nil {
		logrus.Infof("Email %s already processed, %d listings recorded", contentHash[:12], existing.ListingCount)
		return alreadyProcessed(existing), nil
	}

	// One keyword snapshot for the whole run; alerts inherit the
	// deterministic part order, alert order within a part.
	parts, err := c.store.PartsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load parts for user: %w", err)
	}
	alertSnapshot, partSnapshot := buildSnapshot(parts)

	created := 0
	matched := 0
	for _, candidate := range parsed {
		result := matcher.Match(candidate.Title, alertSnapshot, partSnapshot)

		listing := &models.Listing{
			PartID:   result.PartID,
			AlertID:  result.AlertID,
			Source:   Source,
			Title:    candidate.Title,
			URL:      candidate.URL,
			Price:    candidate.Price,
			Location: optionalString(candidate.Location),
			PostedAt: candidate.PostedAt,
			IsNew:    true,
			Status:   models.ListingStatusNew,
		}

		if err := c.store.CreateListing(ctx, listing); err != nil {
			if errors.Is(err, ErrDuplicateListing) {
				logrus.Debugf("Listing already exists, skipping: %s", candidate.URL)
				c.metrics.DuplicateListings.Inc()
				continue
			}
			return nil, fmt.Errorf("failed to create listing: %w", err)
		}

		created++
		if result.PartID != nil {
			matched++
		}
	}

	record := &models.EmailIngestion{
		ContentHash:  contentHash,
		Source:       Source,
		ListingCount: created,
		ProcessedAt:  time.Now(),
	}
	if err := c.store.RecordIngestion(ctx, record); err != nil {
		if errors.Is(err, ErrDuplicateIngestion) {
			// Lost a race with a concurrent run of the same bytes; the
			// winner's record is authoritative.
			winner, lookupErr := c.store.FindIngestionByHash(ctx, contentHash)
			if lookupErr == nil && winner != nil {
				return alreadyProcessed(winner), nil
			}
		}
		return nil, fmt.Errorf("failed to record ingestion: %w", err)
	}

	c.metrics.IngestionRuns.Inc()
	c.metrics.ListingsCreated.Add(float64(created))
	c.metrics.ListingsMatched.Add(float64(matched))

	logrus.Infof("Ingested email %s: %d found, %d created, %d matched",
		contentHash[:12], len(parsed), created, matched)

	return &Summary{
		ListingsFound:   len(parsed),
		ListingsCreated: created,
		ListingsMatched: matched,
	}, nil
}

func alreadyProcessed(record *models.EmailIngestion) *Summary {
	return &Summary{
		ListingsFound:    record.ListingCount,
		ListingsCreated:  record.ListingCount,
		AlreadyProcessed: true,
	}
}

// buildSnapshot flattens the owner's parts into matcher input,
// keeping only active alerts as the matcher precondition requires.
func buildSnapshot(parts []models.Part) ([]matcher.Alert, []matcher.Part) {
	var alerts []matcher.Alert
	partSets := make([]matcher.Part, 0, len(parts))

	for _, part := range parts {
		partSets = append(partSets, matcher.Part{
			ID:       part.ID,
			Keywords: part.KeywordList(),
		})
		for _, alert := range part.Alerts {
			if !alert.IsActive {
				continue
			}
			alerts = append(alerts, matcher.Alert{
				ID:       alert.ID,
				PartID:   part.ID,
				Keywords: alert.KeywordList(),
				IsActive: alert.IsActive,
			})
		}
	}

	return alerts, partSets
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
