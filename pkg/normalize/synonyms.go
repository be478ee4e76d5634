package normalize

import "strings"

// LibraryLayout folds common sequencing-layout synonyms into the two values
// the SRA accepts. Unrecognized input is returned unchanged for the
// vocabulary coercion step to deal with.
func LibraryLayout(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paired", "pair", "pe":
		return "paired"
	case "single", "se":
		return "single"
	}
	return raw
}

// SampleSource folds sample-source synonyms into the two values downstream
// checks key on. Unrecognized input is returned unchanged.
func SampleSource(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "environmental", "environment":
		return "environmental"
	case "host-associated", "host", "host associated":
		return "host-associated"
	}
	return raw
}
