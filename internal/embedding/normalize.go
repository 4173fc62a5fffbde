package embedding

import "strings"

// NormalizeFields builds the canonical embedding input from an ordered list
// of text fields: each field is trimmed, empty fields are dropped, and the
// remainder is joined with single spaces. Callers pass fields most salient
// first. The function is pure and idempotent, which the cache relies on for
// stable fingerprints.
func NormalizeFields(fields ...string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		parts = append(parts, f)
	}
	return strings.Join(parts, " ")
}

// NormalizeLabeled is NormalizeFields with an optional category label
// prefixed as "{label}: {body}". A label without a body yields the empty
// string: the label alone describes no content worth embedding.
func NormalizeLabeled(label string, fields ...string) string {
	body := NormalizeFields(fields...)
	if body == "" {
		return ""
	}
	label = strings.TrimSpace(label)
	if label == "" {
		return body
	}
	return label + ": " + body
}
