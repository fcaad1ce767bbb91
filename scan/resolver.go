package scan

import (
	"net/url"
	"regexp"
	"strings"
)

// Query parameter names a tracking QR may carry, checked in priority order.
var orderParamNames = []string{"order", "orderId", "order_id", "ordernumber", "orderNumber", "o"}

var (
	segmentPattern = regexp.MustCompile(`[A-Za-z0-9_-]{4,}`)
	tokenPattern   = regexp.MustCompile(`[A-Za-z0-9_-]+`)
)

// ResolveOrderNumber maps an arbitrary scanned payload to a best-guess
// order identifier. URLs are mined for known query parameters, then their
// last path segment; anything else degrades to picking the longest
// identifier-looking token. It never fails; unusable input yields "".
func ResolveOrderNumber(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	if u, err := url.Parse(strings.TrimSpace(raw)); err == nil && u.IsAbs() && u.Host != "" {
		query := u.Query()
		for _, name := range orderParamNames {
			if v := strings.TrimSpace(query.Get(name)); v != "" {
				return v
			}
		}

		segments := strings.Split(u.Path, "/")
		for i := len(segments) - 1; i >= 0; i-- {
			if segments[i] == "" {
				continue
			}
			if segmentPattern.MatchString(segments[i]) {
				return segments[i]
			}
			break
		}
	}

	// Longest token wins; first-longest on ties.
	best := ""
	for _, token := range tokenPattern.FindAllString(raw, -1) {
		if len(token) > len(best) {
			best = token
		}
	}
	return best
}
