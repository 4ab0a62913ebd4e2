// Package matcher assigns a parsed listing to at most one alert and/or
// part by case-insensitive keyword containment. First match wins in
// the caller-supplied order; there is no scoring or fuzzy matching, so
// which part a listing lands under depends only on that order.
package matcher

import "strings"

// Alert is a read-only snapshot of one alert's keyword set and its
// owning part.
type Alert struct {
	ID       uint
	PartID   uint
	Keywords []string
	IsActive bool
}

// Part is a read-only snapshot of one part's fallback keyword set.
type Part struct {
	ID       uint
	Keywords []string
}

// Result identifies the matched part and alert; nil fields mean the
// listing is unmatched on that axis.
type Result struct {
	PartID  *uint
	AlertID *uint
}

// Match checks active alerts first: the first alert owning a keyword
// that is a case-insensitive substring of title claims the listing
// along with its part. Otherwise the first matching part claims it
// without an alert. Empty keyword sets never match.
func Match(title string, alerts []Alert, parts []Part) Result {
	titleLower := strings.ToLower(title)

	for _, alert := range alerts {
		if !alert.IsActive {
			continue
		}
		if containsAny(titleLower, alert.Keywords) {
			alertID := alert.ID
			partID := alert.PartID
			return Result{PartID: &partID, AlertID: &alertID}
		}
	}

	for _, part := range parts {
		if containsAny(titleLower, part.Keywords) {
			partID := part.ID
			return Result{PartID: &partID}
		}
	}

	return Result{}
}

func containsAny(titleLower string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(titleLower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}
