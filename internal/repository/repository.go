// Package repository implements the ingestion store on top of gorm.
// Uniqueness on listing URL and ingestion content hash is enforced by
// the database; violations are translated to the ingest package's
// conflict sentinels so callers never see driver-specific errors.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"part-scout-go/internal/ingest"
	"part-scout-go/internal/models"
)

type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ping verifies the database connection is alive.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.WithContext(ctx).Raw("SELECT 1").Error
}

// FindIngestionByHash returns the ingestion record for a content hash,
// or nil when the email has not been processed yet.
func (r *Repository) FindIngestionByHash(ctx context.Context, contentHash string) (*models.EmailIngestion, error) {
	var record models.EmailIngestion
	result := r.db.WithContext(ctx).Where("content_hash = ?", contentHash).First(&record)
	if result.Error == nil {
		return &record, nil
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("database error looking up ingestion: %w", result.Error)
}

// RecordIngestion inserts the idempotency record. A concurrent run
// that already recorded the same hash surfaces as
// ingest.ErrDuplicateIngestion.
func (r *Repository) RecordIngestion(ctx context.Context, record *models.EmailIngestion) error {
	result := r.db.WithContext(ctx).Create(record)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ingest.ErrDuplicateIngestion
		}
		return fmt.Errorf("failed to record ingestion: %w", result.Error)
	}
	return nil
}

// PartsForUser loads every part across the owner's projects with its
// alerts preloaded, in a deterministic order so matching is stable.
func (r *Repository) PartsForUser(ctx context.Context, userID string) ([]models.Part, error) {
	var parts []models.Part
	result := r.db.WithContext(ctx).
		Joins("JOIN projects ON projects.id = parts.project_id").
		Where("projects.user_id = ?", userID).
		Preload("Alerts", func(db *gorm.DB) *gorm.DB {
			return db.Order("alerts.id")
		}).
		Order("parts.id").
		Find(&parts)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load parts: %w", result.Error)
	}
	return parts, nil
}

// CreateListing inserts a listing. An existing row with the same URL
// surfaces as ingest.ErrDuplicateListing.
func (r *Repository) CreateListing(ctx context.Context, listing *models.Listing) error {
	result := r.db.WithContext(ctx).Create(listing)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ingest.ErrDuplicateListing
		}
		return fmt.Errorf("failed to create listing: %w", result.Error)
	}
	return nil
}

// ListListings returns a user's listings, newest first, optionally
// filtered by part and status. Unmatched listings have no part and are
// visible to everyone who ingested them; scoping them per owner would
// need an owner column, which the data model does not carry.
func (r *Repository) ListListings(ctx context.Context, userID string, partID *uint, status string) ([]models.Listing, error) {
	query := r.db.WithContext(ctx).
		Joins("LEFT JOIN parts ON parts.id = listings.part_id").
		Joins("LEFT JOIN projects ON projects.id = parts.project_id").
		Where("projects.user_id = ? OR listings.part_id IS NULL", userID)

	if partID != nil {
		query = query.Where("listings.part_id = ?", *partID)
	}
	if status != "" {
		query = query.Where("listings.status = ?", status)
	}

	var results []models.Listing
	if err := query.Order("listings.created_at DESC").Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	return results, nil
}

// GetListing returns one listing by ID, or nil when absent.
func (r *Repository) GetListing(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	result := r.db.WithContext(ctx).First(&listing, id)
	if result.Error == nil {
		return &listing, nil
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("database error looking up listing: %w", result.Error)
}

// UpdateListingStatus applies the user-facing status/is_new transition
// to an existing listing.
func (r *Repository) UpdateListingStatus(ctx context.Context, id uint, status string, isNew bool) error {
	result := r.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "is_new": isNew})
	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
