package normalize

import (
	"regexp"
	"strings"
)

var (
	geoCanonicalRe = regexp.MustCompile(`^[A-Za-z\s]+:[A-Za-z\s]+$`)
	geoCountryRe   = regexp.MustCompile(`^[A-Za-z\s]+$`)
	geoStrictRe    = regexp.MustCompile(`^[A-Za-z\s]+:\s+[A-Za-z0-9\s:]+$`)
)

// GeoLocName repairs a geographic location toward the "Country: Region" form.
// A bare country gets a trailing colon appended; values already carrying a
// colon-separated region pass through; anything else is returned unchanged.
func GeoLocName(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if geoCanonicalRe.MatchString(s) {
		return s
	}
	if geoCountryRe.MatchString(s) && !strings.Contains(s, ":") {
		return s + ":"
	}
	return s
}

// IsValidGeoLocName is the strict classifier for submission-ready values:
// "Country: Region", whitespace required after the colon, digits allowed in
// the region part. It deliberately rejects some outputs GeoLocName lets
// through (a bare "Country:" or a colon with no following space); callers use
// it to report residual format problems without mutating anything.
func IsValidGeoLocName(s string) bool {
	return geoStrictRe.MatchString(s)
}
