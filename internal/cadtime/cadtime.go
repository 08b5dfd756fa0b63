// Package cadtime extracts date and time substrings from the free-form
// datetime strings found in CAD incident exports. Values are treated as
// opaque strings, never parsed into time.Time: keeping the exact source
// representation avoids timezone assumptions and preserves the original
// text for audit.
package cadtime

import (
	"regexp"
	"strings"
)

// extractPattern pairs a compiled regex with the index of the capture
// group holding the wanted substring. Patterns are tried in slice order;
// the first match wins.
type extractPattern struct {
	re    *regexp.Regexp
	group int
}

var bareTimeRe = regexp.MustCompile(`^\d{1,2}:\d{2}(:\d{2})?$`)

// Ordered from most to least specific. The last entry is the generic
// "anything, then whitespace, then a time" fallback.
var timePatterns = []extractPattern{
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}\s+(\d{1,2}:\d{2}:\d{2})`), 1}, // MM/DD/YYYY HH:MM:SS
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}\s+(\d{1,2}:\d{2}:\d{2})`), 1}, // YYYY-MM-DD HH:MM:SS
	{regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}\s+(\d{1,2}:\d{2})`), 1},       // MM/DD/YYYY HH:MM
	{regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}\s+(\d{1,2}:\d{2})`), 1},       // YYYY-MM-DD HH:MM
	{regexp.MustCompile(`\s(\d{1,2}:\d{2}(?::\d{2})?)`), 1},
}

var bareDatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}$`),
}

var datePatterns = []extractPattern{
	{regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{4})\s`), 1}, // MM/DD/YYYY before a time
	{regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2})\s`), 1}, // YYYY-MM-DD before a time
	{regexp.MustCompile(`^(\S+)\s+\d{1,2}:\d{2}`), 1},     // any token before a time
}

// ExtractTime returns the time portion of s. Bare HH:MM[:SS] values pass
// through unchanged, as does anything no pattern matches.
func ExtractTime(s string) string {
	trimmed := strings.TrimSpace(s)
	if bareTimeRe.MatchString(trimmed) {
		return trimmed
	}
	for _, p := range timePatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return m[p.group]
		}
	}
	return s
}

// ExtractDate returns the date portion of s. Bare date values pass through
// unchanged, as does anything no pattern matches.
func ExtractDate(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, re := range bareDatePatterns {
		if re.MatchString(trimmed) {
			return trimmed
		}
	}
	for _, p := range datePatterns {
		if m := p.re.FindStringSubmatch(trimmed); m != nil {
			return m[p.group]
		}
	}
	return s
}

// CombineDateAndTime joins a date string and a time string with a single
// space. If either side is empty after trimming, the other is returned
// unmodified.
func CombineDateAndTime(dateStr, timeStr string) string {
	d := strings.TrimSpace(dateStr)
	t := strings.TrimSpace(timeStr)
	if d == "" {
		return t
	}
	if t == "" {
		return d
	}
	return d + " " + t
}
