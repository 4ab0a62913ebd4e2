package models

import (
	"encoding/json"
	"time"
)

// Listing status values. Transitions past "new" are driven by the
// user-facing flows, not by the ingestion pipeline.
const (
	ListingStatusNew       = "new"
	ListingStatusViewed    = "viewed"
	ListingStatusContacted = "contacted"
	ListingStatusPurchased = "purchased"
	ListingStatusExpired   = "expired"
)

// Project represents a classic-car restoration project
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;index"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	CarMake   string    `json:"car_make" gorm:"type:varchar(100)"`
	CarModel  string    `json:"car_model" gorm:"type:varchar(100)"`
	CarYear   int       `json:"car_year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Parts []Part `json:"parts,omitempty" gorm:"foreignKey:ProjectID"`
}

// TableName specifies the table name for Project
func (Project) TableName() string {
	return "projects"
}

// Part represents a part a user is seeking for a restoration project.
// Keywords is a JSON-encoded array of lower-cased strings and acts as
// the fallback keyword set when no alert matches.
type Part struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ProjectID   uint      `json:"project_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(255);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Keywords    string    `json:"keywords" gorm:"type:text"`
	Notes       string    `json:"notes" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Alerts []Alert `json:"alerts,omitempty" gorm:"foreignKey:PartID"`
}

// TableName specifies the table name for Part
func (Part) TableName() string {
	return "parts"
}

// KeywordList decodes the JSON keyword array. Malformed or empty
// payloads yield an empty list, never an error.
func (p *Part) KeywordList() []string {
	return decodeKeywords(p.Keywords)
}

// Alert represents a keyword/price/radius filter attached to a Part,
// used to prioritize listing matches over the part's own keywords.
type Alert struct {
	ID             uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PartID         uint      `json:"part_id" gorm:"not null;index"`
	Keywords       string    `json:"keywords" gorm:"type:text"`
	PriceRangeMin  *float64  `json:"price_range_min"`
	PriceRangeMax  *float64  `json:"price_range_max"`
	LocationRadius *int      `json:"location_radius"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Alert
func (Alert) TableName() string {
	return "alerts"
}

// KeywordList decodes the JSON keyword array. Malformed or empty
// payloads yield an empty list, never an error.
func (a *Alert) KeywordList() []string {
	return decodeKeywords(a.Keywords)
}

// Listing represents a single for-sale item discovered from a
// marketplace alert email. URL carries the only uniqueness constraint
// the ingestion pipeline relies on.
type Listing struct {
	ID        uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	PartID    *uint      `json:"part_id" gorm:"index"`
	AlertID   *uint      `json:"alert_id" gorm:"index"`
	Source    string     `json:"source" gorm:"type:varchar(50);not null"`
	Title     string     `json:"title" gorm:"type:varchar(500);not null"`
	URL       string     `json:"url" gorm:"type:varchar(500);not null;uniqueIndex"`
	Price     *float64   `json:"price"`
	Location  *string    `json:"location" gorm:"type:varchar(255)"`
	PostedAt  *time.Time `json:"posted_at"`
	IsNew     bool       `json:"is_new" gorm:"default:true"`
	Status    string     `json:"status" gorm:"type:varchar(20);not null;default:'new'"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Listing
func (Listing) TableName() string {
	return "listings"
}

// EmailIngestion is the idempotency ledger: exactly one row per
// distinct email content, never mutated after creation.
type EmailIngestion struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	ContentHash  string    `json:"content_hash" gorm:"type:varchar(64);not null;uniqueIndex"`
	Source       string    `json:"source" gorm:"type:varchar(50);not null"`
	ListingCount int       `json:"listing_count"`
	ProcessedAt  time.Time `json:"processed_at"`
}

// TableName specifies the table name for EmailIngestion
func (EmailIngestion) TableName() string {
	return "email_ingestions"
}

func decodeKeywords(raw string) []string {
	if raw == "" {
		return nil
	}
	var keywords []string
	if err := json.Unmarshal([]byte(raw), &keywords); err != nil {
		return nil
	}
	return keywords
}
