package handlers

import "time"

// IngestResponse is the summary returned after a successful ingestion
type IngestResponse struct {
	Success         bool `json:"success"`
	ListingsFound   int  `json:"listingsFound"`
	ListingsCreated int  `json:"listingsCreated"`
	ListingsMatched int  `json:"listingsMatched"`
}

// AlreadyProcessedResponse is returned when the uploaded email's
// content hash has been ingested before
type AlreadyProcessedResponse struct {
	Message       string `json:"message"`
	ListingsCount int    `json:"listingsCount"`
}

// ErrorResponse is the structured error payload; Details is only
// populated for input errors, never for persistence failures
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// UpdateListingRequest carries the user-facing listing transitions
type UpdateListingRequest struct {
	Status string `json:"status" binding:"required,oneof=new viewed contacted purchased expired"`
	IsNew  *bool  `json:"is_new"`
}

// SchedulerStatusResponse reports the mailbox poller state
type SchedulerStatusResponse struct {
	Running bool       `json:"running"`
	NextRun *time.Time `json:"next_run,omitempty"`
	LastRun *time.Time `json:"last_run,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Database  string            `json:"database"`
	Metrics   map[string]string `json:"metrics,omitempty"`
}
