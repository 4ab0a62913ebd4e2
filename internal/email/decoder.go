package email

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/emersion/go-message"
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
	"github.com/sirupsen/logrus"
)

// DecodedEmail holds the best-effort decoded parts of one .eml message.
// HTML is empty when no HTML part could be found; Date is nil when the
// Date header is missing or unparsable.
type DecodedEmail struct {
	HTML string
	Text string
	Date *time.Time
}

var (
	fallbackHTMLExpr = regexp.MustCompile(`(?is)Content-Type:\s*text/html.*?\r?\n\r?\n(.*?)(?:Content-Type:|\r?\n--|$)`)
	fallbackTextExpr = regexp.MustCompile(`(?is)Content-Type:\s*text/plain.*?\r?\n\r?\n(.*?)(?:Content-Type:|\r?\n--|$)`)
	fallbackDateExpr = regexp.MustCompile(`(?im)^Date:\s*(.+)$`)
)

// Decode parses raw .eml bytes into HTML and plain-text bodies plus the
// message Date. It never fails: malformed input degrades to a naive
// header/boundary scan, and a message without an HTML part simply
// yields an empty HTML field.
func Decode(raw []byte) DecodedEmail {
	var decoded DecodedEmail

	entity, err := message.Read(bytes.NewReader(raw))
	if err != nil && !message.IsUnknownCharset(err) {
		logrus.Debugf("MIME parse failed, falling back to naive scan: %v", err)
		return decodeFallback(raw)
	}

	decoded.Date = headerDate(entity)
	collectParts(entity, &decoded)

	// Some alert emails declare MIME badly enough that go-message sees
	// no usable HTML part even though one is present.
	if decoded.HTML == "" {
		fallback := decodeFallback(raw)
		if fallback.HTML != "" {
			decoded.HTML = fallback.HTML
		}
		if decoded.Text == "" {
			decoded.Text = fallback.Text
		}
		if decoded.Date == nil {
			decoded.Date = fallback.Date
		}
	}

	return decoded
}

// headerDate reads the Date header, preferring the strict RFC 5322
// parser and degrading to a permissive one for sloppy senders.
func headerDate(entity *message.Entity) *time.Time {
	header := mail.Header{Header: entity.Header}
	if date, err := header.Date(); err == nil && !date.IsZero() {
		return &date
	}

	value := entity.Header.Get("Date")
	if value == "" {
		return nil
	}
	date, err := dateparse.ParseAny(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &date
}

// collectParts walks the MIME tree and keeps the first HTML and first
// plain-text bodies encountered.
func collectParts(entity *message.Entity, decoded *DecodedEmail) {
	if multipart := entity.MultipartReader(); multipart != nil {
		for {
			part, err := multipart.NextPart()
			if err == io.EOF {
				return
			}
			if err != nil {
				logrus.Debugf("Failed to read MIME part: %v", err)
				return
			}
			collectParts(part, decoded)
		}
	}

	contentType, _, err := entity.Header.ContentType()
	if err != nil {
		contentType = ""
	}

	body, err := io.ReadAll(entity.Body)
	if err != nil {
		logrus.Debugf("Failed to read MIME part body: %v", err)
		return
	}

	switch {
	case strings.Contains(contentType, "text/html"):
		if decoded.HTML == "" {
			decoded.HTML = strings.TrimSpace(string(body))
		}
	case strings.Contains(contentType, "text/plain"), contentType == "":
		if decoded.Text == "" {
			decoded.Text = strings.TrimSpace(string(body))
		}
	}
}

// decodeFallback scans the raw bytes for content-type sections and a
// Date header without interpreting MIME structure. It handles the
// malformed alert emails that a strict parser rejects.
func decodeFallback(raw []byte) DecodedEmail {
	var decoded DecodedEmail
	content := string(raw)

	if match := fallbackHTMLExpr.FindStringSubmatch(content); match != nil {
		decoded.HTML = strings.TrimSpace(match[1])
	}
	if match := fallbackTextExpr.FindStringSubmatch(content); match != nil {
		decoded.Text = strings.TrimSpace(match[1])
	}
	if match := fallbackDateExpr.FindStringSubmatch(content); match != nil {
		if date, err := dateparse.ParseAny(strings.TrimSpace(match[1])); err == nil {
			decoded.Date = &date
		}
	}

	return decoded
}
