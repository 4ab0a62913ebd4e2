package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"part-scout-go/internal/metrics"
	"part-scout-go/internal/models"
)

// Prometheus collectors register globally, so the package shares one set.
var testMetrics = metrics.NewMetrics()

// fakeStore implements Store in memory, enforcing the same uniqueness
// rules the database does.
type fakeStore struct {
	ingestions  map[string]*models.EmailIngestion
	listings    map[string]*models.Listing
	parts       []models.Part
	findCalls   int
	createCalls int
	recordCalls int
	createErr   error
	recordErr   error
	// raceWinner, when set, is returned by lookups after the first
	// one, simulating a concurrent run that recorded the email.
	raceWinner *models.EmailIngestion
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		ingestions: make(map[string]*models.EmailIngestion),
		listings:   make(map[string]*models.Listing),
	}
}

func (f *fakeStore) FindIngestionByHash(_ context.Context, hash string) (*models.EmailIngestion, error) {
	f.findCalls++
	if record, ok := f.ingestions[hash]; ok {
		return record, nil
	}
	if f.raceWinner != nil && f.findCalls > 1 {
		return f.raceWinner, nil
	}
	return nil, nil
}

func (f *fakeStore) RecordIngestion(_ context.Context, record *models.EmailIngestion) error {
	f.recordCalls++
	if f.recordErr != nil {
		return f.recordErr
	}
	if _, ok := f.ingestions[record.ContentHash]; ok {
		return ErrDuplicateIngestion
	}
	f.ingestions[record.ContentHash] = record
	return nil
}

func (f *fakeStore) PartsForUser(_ context.Context, _ string) ([]models.Part, error) {
	return f.parts, nil
}

func (f *fakeStore) CreateListing(_ context.Context, listing *models.Listing) error {
	f.createCalls++
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.listings[listing.URL]; ok {
		return ErrDuplicateListing
	}
	f.listings[listing.URL] = listing
	return nil
}

func sampleEmail() []byte {
	return []byte("From: alerts@olx.pt\r\n" +
		"Date: Mon, 1 Jan 2024 12:00:00 +0000\r\n" +
		"Subject: New listings for your alert\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body>" +
		"<a href=\"https://www.olx.pt/item/101?utm_source=email\">Front Bumper Chrome</a>" +
		"<a href=\"https://www.olx.pt/item/102\">Steering Wheel Wood</a>" +
		"</body></html>\r\n")
}

func partsWithBumperAlert() []models.Part {
	return []models.Part{
		{
			ID:       1,
			Name:     "Front bumper",
			Keywords: `["para-choques"]`,
			Alerts: []models.Alert{
				{ID: 10, PartID: 1, Keywords: `["bumper"]`, IsActive: true},
			},
		},
		{
			ID:       2,
			Name:     "Steering wheel",
			Keywords: `["steering wheel"]`,
		},
	}
}

func TestIngestCreatesAndMatchesListings(t *testing.T) {
	store := newFakeStore()
	store.parts = partsWithBumperAlert()
	coordinator := NewCoordinator(store, testMetrics)

	summary, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ListingsFound)
	assert.Equal(t, 2, summary.ListingsCreated)
	assert.Equal(t, 2, summary.ListingsMatched)
	assert.False(t, summary.AlreadyProcessed)

	bumper := store.listings["https://www.olx.pt/item/101"]
	require.NotNil(t, bumper)
	require.NotNil(t, bumper.PartID)
	require.NotNil(t, bumper.AlertID)
	assert.Equal(t, uint(1), *bumper.PartID)
	assert.Equal(t, uint(10), *bumper.AlertID)
	assert.Equal(t, models.ListingStatusNew, bumper.Status)
	assert.True(t, bumper.IsNew)
	assert.Equal(t, Source, bumper.Source)

	wheel := store.listings["https://www.olx.pt/item/102"]
	require.NotNil(t, wheel)
	require.NotNil(t, wheel.PartID)
	assert.Equal(t, uint(2), *wheel.PartID)
	assert.Nil(t, wheel.AlertID)

	record := store.ingestions[ContentHash(sampleEmail())]
	require.NotNil(t, record)
	assert.Equal(t, 2, record.ListingCount)
	assert.Equal(t, Source, record.Source)
}

func TestIngestIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.parts = partsWithBumperAlert()
	coordinator := NewCoordinator(store, testMetrics)

	first, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	createsAfterFirst := store.createCalls
	recordsAfterFirst := store.recordCalls

	second, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.ListingsCreated, second.ListingsCreated)
	assert.Equal(t, createsAfterFirst, store.createCalls, "second run must not write listings")
	assert.Equal(t, recordsAfterFirst, store.recordCalls, "second run must not write a record")
	assert.Len(t, store.ingestions, 1)
}

func TestIngestDifferentBytesDifferentHash(t *testing.T) {
	a := ContentHash([]byte("alpha"))
	b := ContentHash([]byte("alpha "))
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, ContentHash([]byte("alpha")))
}

func TestIngestNoHTMLContent(t *testing.T) {
	raw := []byte("From: someone@example.com\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"no markup here\r\n")

	coordinator := NewCoordinator(newFakeStore(), testMetrics)
	_, err := coordinator.Ingest(context.Background(), raw, "user-1")
	assert.ErrorIs(t, err, ErrNoHTMLContent)
}

func TestIngestNoListingsFound(t *testing.T) {
	raw := []byte("From: someone@example.com\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<html><body><p>nothing for sale</p></body></html>\r\n")

	store := newFakeStore()
	coordinator := NewCoordinator(store, testMetrics)
	_, err := coordinator.Ingest(context.Background(), raw, "user-1")
	assert.ErrorIs(t, err, ErrNoListingsFound)
	assert.Zero(t, store.recordCalls)
}

func TestIngestSkipsDuplicateURLs(t *testing.T) {
	store := newFakeStore()
	store.parts = partsWithBumperAlert()
	// The bumper listing already exists from an earlier email.
	store.listings["https://www.olx.pt/item/101"] = &models.Listing{URL: "https://www.olx.pt/item/101"}

	coordinator := NewCoordinator(store, testMetrics)
	summary, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ListingsFound)
	assert.Equal(t, 1, summary.ListingsCreated)
	assert.Equal(t, 1, summary.ListingsMatched, "only created listings count as matched")

	record := store.ingestions[ContentHash(sampleEmail())]
	require.NotNil(t, record)
	assert.Equal(t, 1, record.ListingCount)
}

func TestIngestUnmatchedListingsStillCreated(t *testing.T) {
	store := newFakeStore()
	coordinator := NewCoordinator(store, testMetrics)

	summary, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, summary.ListingsCreated)
	assert.Equal(t, 0, summary.ListingsMatched)
	for _, listing := range store.listings {
		assert.Nil(t, listing.PartID)
		assert.Nil(t, listing.AlertID)
	}
}

func TestIngestPersistenceErrorAbortsWithoutRecord(t *testing.T) {
	store := newFakeStore()
	store.createErr = fmt.Errorf("connection reset")

	coordinator := NewCoordinator(store, testMetrics)
	_, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateListing)
	assert.Empty(t, store.ingestions, "no ingestion record may exist after a failed run")

	// A retry with the same bytes must not be treated as processed.
	store.createErr = nil
	summary, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)
	assert.False(t, summary.AlreadyProcessed)
	assert.Equal(t, 2, summary.ListingsCreated)
}

func TestIngestRecordRaceFallsBackToWinner(t *testing.T) {
	store := newFakeStore()
	store.recordErr = ErrDuplicateIngestion
	store.raceWinner = &models.EmailIngestion{
		ContentHash:  ContentHash(sampleEmail()),
		ListingCount: 2,
	}

	coordinator := NewCoordinator(store, testMetrics)
	summary, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.NoError(t, err)

	assert.True(t, summary.AlreadyProcessed)
	assert.Equal(t, 2, summary.ListingsCreated)
}

func TestIngestRecordFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.recordErr = errors.New("disk full")

	coordinator := NewCoordinator(store, testMetrics)
	_, err := coordinator.Ingest(context.Background(), sampleEmail(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record ingestion")
}
