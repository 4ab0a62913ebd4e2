package listings

import (
	"net/url"
	"strings"
)

// CanonicalURL normalizes a listing link to origin + path plus the
// marketplace's identity "hash" query parameter, dropping UTM and
// other tracking parameters. Relative or unparsable URLs are rejected;
// the operation is idempotent.
func CanonicalURL(raw string) (string, bool) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", false
	}

	canonical := url.URL{
		Scheme: parsed.Scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
	}
	if hash := parsed.Query().Get("hash"); hash != "" {
		query := url.Values{}
		query.Set("hash", hash)
		canonical.RawQuery = query.Encode()
	}

	return canonical.String(), true
}
