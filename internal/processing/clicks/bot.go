package clicks

import "strings"

const unknownUserAgent = "Unknown"

var botMarkers = []string{"bot", "crawl"}

// IsBot reports whether the user agent looks like an automated client.
func IsBot(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, marker := range botMarkers {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

func normalizeUserAgent(ua string) string {
	ua = strings.TrimSpace(ua)
	if ua == "" {
		return unknownUserAgent
	}
	return ua
}
