package ingest

import "errors"

// Input errors: the uploaded file cannot produce listings and a retry
// with the same bytes will not help.
var (
	ErrNoHTMLContent   = errors.New("no HTML content found in email")
	ErrNoListingsFound = errors.New("no listings found in email")
)

// Conflict outcomes surfaced by the store. Neither is a failure: a
// duplicate listing URL is a counted skip, a duplicate content hash
// means a concurrent run already recorded this email.
var (
	ErrDuplicateListing   = errors.New("listing URL already exists")
	ErrDuplicateIngestion = errors.New("email ingestion already recorded")
)
