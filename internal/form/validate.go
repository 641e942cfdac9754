package form

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Per-entry messages shown under each subject field.
const (
	MsgRequired  = "Subject name is required"
	MsgMinLength = "Minimum 2 characters required"
	MsgDuplicate = "Duplicate subject"
)

// minSubjectLength is measured in characters after trimming.
const minSubjectLength = 2

// ValidationResult holds one message per entry, index-aligned with the input.
// An empty string means the entry passed.
type ValidationResult struct {
	Errors []string
}

// Valid reports whether every entry passed.
func (r ValidationResult) Valid() bool {
	for _, e := range r.Errors {
		if e != "" {
			return false
		}
	}
	return true
}

// Fields returns the failing entries keyed by index, for error envelopes.
func (r ValidationResult) Fields() map[string]string {
	fields := make(map[string]string)
	for i, e := range r.Errors {
		if e != "" {
			fields["subjects["+strconv.Itoa(i)+"]"] = e
		}
	}
	return fields
}

// Validate checks subject entries in order. Duplicates are detected
// case-insensitively against earlier entries that passed.
func Validate(entries []string) ValidationResult {
	errs := make([]string, len(entries))
	seen := make(map[string]struct{}, len(entries))

	for i, raw := range entries {
		trimmed := trimEntry(raw)
		key := strings.ToLower(trimmed)

		switch {
		case trimmed == "":
			errs[i] = MsgRequired
		case utf8.RuneCountInString(trimmed) < minSubjectLength:
			errs[i] = MsgMinLength
		default:
			if _, dup := seen[key]; dup {
				errs[i] = MsgDuplicate
				continue
			}
			seen[key] = struct{}{}
		}
	}

	return ValidationResult{Errors: errs}
}

// trimEntry strips surrounding whitespace and byte order marks, which pasted
// text often carries.
func trimEntry(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// CleanSubjects trims entries and drops the empty ones, keeping order.
func CleanSubjects(entries []string) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if t := trimEntry(e); t != "" {
			out = append(out, t)
		}
	}
	return out
}
