package logging

import "unicode/utf8"

// MaxCellLogLength is the maximum length of a metadata cell value embedded in an
// issue message or log field. Spreadsheet exports occasionally carry whole
// paragraphs in a single cell.
const MaxCellLogLength = 100

// TruncateString truncates a string to maxLen runes and adds ellipsis if needed.
// Truncation is rune-aware so multi-byte values (degree signs, accented locality
// names) are never split mid-character.
func TruncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// TruncateCell truncates a metadata cell value for inclusion in issue messages
// and log fields.
func TruncateCell(s string) string {
	return TruncateString(s, MaxCellLogLength)
}
