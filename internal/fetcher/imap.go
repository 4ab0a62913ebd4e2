package fetcher

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/sirupsen/logrus"

	"part-scout-go/internal/config"
)

// EmailFetcher pulls raw messages from an alert mailbox. Each element
// is one complete .eml byte stream, ready for the ingestion pipeline.
type EmailFetcher interface {
	FetchNewEmails(ctx context.Context) ([][]byte, error)
	Close() error
}

// IMAPFetcher implements EmailFetcher against a generic IMAP server
type IMAPFetcher struct {
	client    *client.Client
	mailbox   string
	lastCheck time.Time
}

// NewIMAPFetcher connects and logs in to the configured IMAP server
func NewIMAPFetcher(cfg *config.IMAPConfig) (*IMAPFetcher, error) {
	c, err := client.DialTLS(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(cfg.User, cfg.Password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to login to IMAP server: %w", err)
	}

	return &IMAPFetcher{
		client:    c,
		mailbox:   cfg.Mailbox,
		lastCheck: time.Now().Add(-24 * time.Hour),
	}, nil
}

// FetchNewEmails returns the raw bytes of messages received since the
// last check. Re-delivering a message is harmless: ingestion is
// idempotent on content hash.
func (f *IMAPFetcher) FetchNewEmails(ctx context.Context) ([][]byte, error) {
	if _, err := f.client.Select(f.mailbox, false); err != nil {
		return nil, fmt.Errorf("failed to select mailbox %s: %w", f.mailbox, err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.Since = f.lastCheck

	uids, err := f.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	if len(uids) == 0 {
		f.lastCheck = time.Now()
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uids...)

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchUid}

	messages := make(chan *imap.Message, len(uids))
	done := make(chan error, 1)

	go func() {
		done <- f.client.Fetch(seqset, items, messages)
	}()

	var raws [][]byte
	for msg := range messages {
		body := msg.GetBody(section)
		if body == nil {
			logrus.Warnf("IMAP message %d has no body section", msg.SeqNum)
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			logrus.Warnf("Failed to read IMAP message %d: %v", msg.SeqNum, err)
			continue
		}
		raws = append(raws, raw)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	f.lastCheck = time.Now()
	return raws, nil
}

// Close logs out of the IMAP session
func (f *IMAPFetcher) Close() error {
	return f.client.Logout()
}
