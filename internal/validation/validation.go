// Package validation carries field-level validation failures across the
// service boundary as structured data rather than formatted strings.
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Errors maps a field name to the messages recorded against it.
type Errors map[string][]string

// Add records a message against a field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Addf records a formatted message against a field.
func (e Errors) Addf(field, format string, args ...interface{}) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Static records the immutable-field message against a field.
func (e Errors) Static(field string) {
	e.Add(field, "is static and cannot be changed")
}

// Any reports whether any failure was recorded.
func (e Errors) Any() bool {
	return len(e) > 0
}

// On returns the messages recorded against a field.
func (e Errors) On(field string) []string {
	return e[field]
}

// Error renders all failures, fields in stable order.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(f)
		b.WriteString(" ")
		b.WriteString(strings.Join(e[f], ", "))
	}
	return b.String()
}
