package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty becomes missing sentinel", "", "not collected"},
		{"whitespace only becomes missing sentinel", "   ", "not collected"},
		{"sentinel passes through", "not collected", "not collected"},
		{"sentinel keeps original casing", "Not Provided", "Not Provided"},
		{"sentinel unknown", "unknown", "unknown"},
		{"iso datetime unchanged", "2015-10-11T17:53:03Z", "2015-10-11T17:53:03Z"},
		{"iso date unchanged", "2017-07-24", "2017-07-24"},
		{"iso year-month unchanged", "2017-07", "2017-07"},
		{"year only unchanged", "2017", "2017"},
		{"month first", "7/24/2017", "2017-07-24"},
		{"day first when first exceeds twelve", "24/7/2017", "2017-07-24"},
		{"single digit month and day", "12/1/2016", "2016-12-01"},
		{"ambiguous low pair stays month first", "1/12/2016", "2016-01-12"},
		{"thirteen forces day first", "13/12/2016", "2016-12-13"},
		{"invalid month clamps to january", "13/13/2016", "2016-01-13"},
		{"invalid day clamps to first", "1/32/2016", "2016-01-01"},
		{"day month abbreviation year", "24-Jul-2017", "2017-07-24"},
		{"day month abbreviation zero pads", "3-Oct-1990", "1990-10-03"},
		{"abbreviation case folded", "30-OCT-1990", "1990-10-30"},
		{"abbreviation with spaces", "30 Oct 1990", "1990-10-30"},
		{"month abbreviation year", "Jul-2017", "2017-07"},
		{"month abbreviation year spaced", "Oct 1990", "1990-10"},
		{"slashed month-year shadowed by range split", "Oct/1990", "Oct/1990"},
		{"slashed day-month-year still matches", "24/Jul/2017", "2017-07-24"},
		{"numeric ymd slashes", "2017/07/24", "2017-07-24"},
		{"numeric ymd zero pads", "2023-7-5", "2023-07-05"},
		{"range of abbreviated dates", "21-Oct-1952/15-Feb-1953", "1952-10-21/1953-02-15"},
		{"range of iso dates unchanged", "1952-10-21/1953-02-15", "1952-10-21/1953-02-15"},
		{"range with empty side fills sentinel", "2019-01-01/", "2019-01-01/not collected"},
		{"unknown month abbreviation unchanged", "30-Foo-1990", "30-Foo-1990"},
		{"free text unchanged", "last summer", "last summer"},
		{"free text trimmed", "  last summer ", "last summer"},
		{"three part slash junk unchanged", "1/2/3/4", "1/2/3/4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.input))
		})
	}
}

func TestDateIdempotent(t *testing.T) {
	inputs := []string{
		"", "not collected", "Unknown", "2017-07-24", "2017-07", "2017",
		"2015-10-11T17:53:03Z", "7/24/2017", "24/7/2017", "24-Jul-2017",
		"Jul-2017", "2017/07/24", "21-Oct-1952/15-Feb-1953", "last summer",
		"30-Foo-1990", "1/2/3/4", "2019-01-01/",
	}

	for _, in := range inputs {
		once := Date(in)
		assert.Equal(t, once, Date(once), "Date not idempotent for %q", in)
	}
}

func TestIsCanonicalDate(t *testing.T) {
	canonical := []string{
		"2017-07-24", "2017-07", "2017", "2015-10-11T17:53:03Z",
		"not collected", "Not Provided", "unknown",
		"1952-10-21/1953-02-15", "2019-01-01/not collected",
	}
	for _, s := range canonical {
		assert.True(t, IsCanonicalDate(s), "expected canonical: %q", s)
	}

	notCanonical := []string{
		"", "last summer", "7/24/2017", "24-Jul-2017", "30-Foo-1990",
		"1/2/3/4", "foo/2023-01-01",
	}
	for _, s := range notCanonical {
		assert.False(t, IsCanonicalDate(s), "expected not canonical: %q", s)
	}
}
