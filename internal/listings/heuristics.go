package listings

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Price markers accepted in OLX alert snippets, tried in order. The
// comma decimal separator is normalized to a dot before parsing.
var priceExprs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)€\s*(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*€`),
	regexp.MustCompile(`(?i)EUR\s*(\d+(?:[.,]\d+)?)`),
	regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*EUR`),
}

// Portuguese locative markers ("em Lisboa", "Localização: Porto") and
// the "Lisboa - Lisboa" form OLX renders under listing cards.
var locationExprs = []*regexp.Regexp{
	regexp.MustCompile(`(?:(?i:em|de|localização|local))[:\s]+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*-\s*[A-Z][a-z]+`),
}

var (
	absoluteDateExpr = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{4})`)
	relativeAgeExpr  = regexp.MustCompile(`(?i)há\s+(\d+)\s+(dias?|horas?|minutos?)`)
)

// ParsePrice extracts the first price found in text. A match must
// parse to a positive number or the next pattern is tried; no match
// means no price.
func ParsePrice(text string) *float64 {
	for _, expr := range priceExprs {
		match := expr.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
		if err == nil && value > 0 {
			return &value
		}
	}
	return nil
}

// ParseLocation extracts the first capitalized place name following a
// locative marker, or the left side of a "Place - Place" pair. Empty
// string means absent.
func ParseLocation(text string) string {
	for _, expr := range locationExprs {
		match := expr.FindStringSubmatch(text)
		if match != nil && match[1] != "" {
			return strings.TrimSpace(match[1])
		}
	}
	return ""
}

// parsePostedAt resolves an explicit DD/MM/YYYY (or DD-MM-YYYY) date,
// or a relative age like "há 2 dias" against the extractor's clock.
func (e *Extractor) parsePostedAt(text string) *time.Time {
	if match := absoluteDateExpr.FindStringSubmatch(text); match != nil {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
			return &date
		}
	}

	if match := relativeAgeExpr.FindStringSubmatch(text); match != nil {
		amount, _ := strconv.Atoi(match[1])
		now := e.now()

		var date time.Time
		switch unit := strings.ToLower(match[2]); {
		case strings.HasPrefix(unit, "dia"):
			date = now.AddDate(0, 0, -amount)
		case strings.HasPrefix(unit, "hora"):
			date = now.Add(-time.Duration(amount) * time.Hour)
		default:
			date = now.Add(-time.Duration(amount) * time.Minute)
		}
		return &date
	}

	return nil
}
