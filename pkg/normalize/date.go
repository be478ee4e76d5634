// Package normalize holds the field-level repair functions applied to metadata
// cells before submission. Every function is pure and total: unrecognized input
// comes back unchanged (the table validator decides whether to flag it), and
// running a function twice never changes the result further.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
)

// DateMissing is the sentinel NCBI accepts for an absent collection date.
const DateMissing = "not collected"

var dateSentinels = map[string]bool{
	"not collected": true,
	"not provided":  true,
	"unknown":       true,
}

var (
	isoDateTimeRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`)
	isoDateRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoYearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
	yearOnlyRe     = regexp.MustCompile(`^\d{4}$`)
	slashedMDYRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dayMonYearRe   = regexp.MustCompile(`^(\d{1,2})[-/\s]([A-Za-z]{3})[-/\s](\d{4})$`)
	monYearRe      = regexp.MustCompile(`^([A-Za-z]{3})[-/\s](\d{4})$`)
	numericYMDRe   = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`)
)

var monthNumbers = map[string]string{
	"jan": "01", "feb": "02", "mar": "03", "apr": "04",
	"may": "05", "jun": "06", "jul": "07", "aug": "08",
	"sep": "09", "oct": "10", "nov": "11", "dec": "12",
}

// Date repairs a collection date into an ISO 8601 form the SRA accepts.
//
// Accepted inputs and their outputs:
//
//	""                        -> "not collected"
//	"Not Provided"            -> "Not Provided" (sentinels pass through verbatim)
//	"2015-10-11T17:53:03Z"    -> unchanged
//	"1990-10-30", "1990-10",
//	"1990"                    -> unchanged
//	"7/24/2017", "24/7/2017"  -> "2017-07-24" (first component > 12 means day-first)
//	"30-Oct-1990"             -> "1990-10-30"
//	"Oct-1990"                -> "1990-10"
//	"2017/7/5"                -> "2017-07-05"
//	"21-Oct-1952/15-Feb-1953" -> "1952-10-21/1953-02-15" (each side repaired)
//
// Anything else comes back trimmed but otherwise unchanged so the caller can
// flag it; an empty cell is the one input coerced to the missing sentinel.
func Date(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DateMissing
	}
	if dateSentinels[strings.ToLower(s)] {
		return s
	}

	if isoDateTimeRe.MatchString(s) || isoDateRe.MatchString(s) ||
		isoYearMonthRe.MatchString(s) || yearOnlyRe.MatchString(s) {
		return s
	}

	// Date range. A single M/D/YYYY date also contains slashes, so it is
	// excluded here and handled below.
	if strings.Contains(s, "/") && !slashedMDYRe.MatchString(s) {
		parts := strings.Split(s, "/")
		if len(parts) == 2 {
			start := Date(parts[0])
			end := Date(parts[1])
			if start != "" && end != "" {
				return start + "/" + end
			}
		}
	}

	if m := slashedMDYRe.FindStringSubmatch(s); m != nil {
		return repairAmbiguousSlashed(m[1], m[2], m[3])
	}

	if m := dayMonYearRe.FindStringSubmatch(s); m != nil {
		if num, ok := monthNumbers[strings.ToLower(m[2])]; ok {
			return m[3] + "-" + num + "-" + padTwo(m[1])
		}
	}

	if m := monYearRe.FindStringSubmatch(s); m != nil {
		if num, ok := monthNumbers[strings.ToLower(m[1])]; ok {
			return m[2] + "-" + num
		}
	}

	if m := numericYMDRe.FindStringSubmatch(s); m != nil {
		return m[1] + "-" + padTwo(m[2]) + "-" + padTwo(m[3])
	}

	return s
}

// repairAmbiguousSlashed resolves M/D/YYYY against D/M/YYYY. US month-first
// order is assumed unless the first component cannot be a month.
func repairAmbiguousSlashed(first, second, year string) string {
	d1, err1 := strconv.Atoi(first)
	d2, err2 := strconv.Atoi(second)
	if err1 != nil || err2 != nil {
		return year + "-01-01"
	}

	month, day := first, second
	monthNum, dayNum := d1, d2
	if d1 > 12 {
		month, day = second, first
		monthNum, dayNum = d2, d1
	}

	if monthNum < 1 || monthNum > 12 {
		month = "01"
	}
	if dayNum < 1 || dayNum > 31 {
		day = "01"
	}

	return year + "-" + padTwo(month) + "-" + padTwo(day)
}

func padTwo(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// IsCanonicalDate reports whether s is a form Date would emit for well-formed
// input: an ISO 8601 date, a missing-value sentinel, or a range of two such
// values. The table validator uses it to tell repaired dates apart from
// unrecognized ones that passed through unchanged.
func IsCanonicalDate(s string) bool {
	if isCanonicalSingleDate(s) {
		return true
	}
	parts := strings.Split(s, "/")
	if len(parts) == 2 {
		return isCanonicalSingleDate(parts[0]) && isCanonicalSingleDate(parts[1])
	}
	return false
}

func isCanonicalSingleDate(s string) bool {
	if dateSentinels[strings.ToLower(strings.TrimSpace(s))] {
		return true
	}
	return isoDateTimeRe.MatchString(s) || isoDateRe.MatchString(s) ||
		isoYearMonthRe.MatchString(s) || yearOnlyRe.MatchString(s)
}
