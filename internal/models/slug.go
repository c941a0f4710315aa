package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	slugPattern    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars   = regexp.MustCompile(`[^a-z0-9]+`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// Kebab converts a label to its dash-cased slug segment.
func Kebab(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugChars.ReplaceAllString(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EventSlug derives the deterministic slug for a role event from its
// date, index and variant label. The index segment is omitted for the
// first event of a role; any absent input drops its segment and the
// remaining segments join with a dash.
func EventSlug(date time.Time, index int, label string) string {
	var parts []string
	if !date.IsZero() {
		parts = append(parts, date.Format("2006-01-02"))
	}
	if index > 0 {
		parts = append(parts, strconv.Itoa(index))
	}
	if k := Kebab(label); k != "" {
		parts = append(parts, k)
	}
	return strings.Join(parts, "-")
}

// ValidSlug reports whether s is well-formed kebab case.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
