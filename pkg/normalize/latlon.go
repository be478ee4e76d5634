package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	latLonCanonicalRe = regexp.MustCompile(`^\d+\.\d+ [NS] \d+\.\d+ [EW]$`)
	latLonDecimalRe   = regexp.MustCompile(`^(-?\d+\.\d+)[,\s]+(-?\d+\.\d+)$`)
	latLonStrictRe    = regexp.MustCompile(`^(-?\d+(\.\d+)?\s+[NS])\s+(-?\d+(\.\d+)?\s+[EW])$`)
)

// LatLon repairs a coordinate pair into the SRA's "D.D N D.D W" form. Signed
// decimal pairs ("36.9513, -122.0733") are converted, with the hemisphere
// letter taken from the sign and the digits kept as written. Values already in
// canonical form, and anything unrecognized, are returned unchanged.
func LatLon(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if latLonCanonicalRe.MatchString(s) {
		return s
	}

	m := latLonDecimalRe.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	lat, err1 := strconv.ParseFloat(m[1], 64)
	lon, err2 := strconv.ParseFloat(m[2], 64)
	if err1 != nil || err2 != nil {
		return s
	}

	latDir := "N"
	if lat < 0 {
		latDir = "S"
	}
	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
	}

	return strings.TrimPrefix(m[1], "-") + " " + latDir + " " +
		strings.TrimPrefix(m[2], "-") + " " + lonDir
}

// IsValidLatLon is the strict classifier for submission-ready coordinates:
// signed or unsigned decimals with hemisphere letters, whitespace separated.
func IsValidLatLon(s string) bool {
	return latLonStrictRe.MatchString(s)
}
