package form

import (
	"reflect"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		entries   []string
		wantErrs  []string
		wantValid bool
	}{
		{
			name:      "unique subjects pass",
			entries:   []string{"Math", "Science", " English "},
			wantErrs:  []string{"", "", ""},
			wantValid: true,
		},
		{
			name:      "case-insensitive duplicate",
			entries:   []string{"Math", "math"},
			wantErrs:  []string{"", MsgDuplicate},
			wantValid: false,
		},
		{
			name:      "duplicate after trimming",
			entries:   []string{"Art", "  ART  "},
			wantErrs:  []string{"", MsgDuplicate},
			wantValid: false,
		},
		{
			name:      "too short",
			entries:   []string{"A", "Science"},
			wantErrs:  []string{MsgMinLength, ""},
			wantValid: false,
		},
		{
			name:      "empty entry",
			entries:   []string{""},
			wantErrs:  []string{MsgRequired},
			wantValid: false,
		},
		{
			name:      "whitespace only is empty",
			entries:   []string{"   ", "Math"},
			wantErrs:  []string{MsgRequired, ""},
			wantValid: false,
		},
		{
			name:      "short entries are not remembered as seen",
			entries:   []string{"a", "a", "Hindi"},
			wantErrs:  []string{MsgMinLength, MsgMinLength, ""},
			wantValid: false,
		},
		{
			name:      "two-letter names are accepted",
			entries:   []string{"EV", "GK"},
			wantErrs:  []string{"", ""},
			wantValid: true,
		},
		{
			name:      "length counts characters",
			entries:   []string{"é", "数学"},
			wantErrs:  []string{MsgMinLength, ""},
			wantValid: false,
		},
		{
			name:      "byte order mark alone is empty",
			entries:   []string{"\uFEFF", "\uFEFF \uFEFF"},
			wantErrs:  []string{MsgRequired, MsgRequired},
			wantValid: false,
		},
		{
			name:      "byte order mark ignored for duplicates",
			entries:   []string{"\uFEFFMath", "math"},
			wantErrs:  []string{"", MsgDuplicate},
			wantValid: false,
		},
		{
			name:      "byte order mark does not count toward length",
			entries:   []string{"\uFEFFA"},
			wantErrs:  []string{MsgMinLength},
			wantValid: false,
		},
		{
			name:      "no entries",
			entries:   []string{},
			wantErrs:  []string{},
			wantValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.entries)
			if len(got.Errors) != len(tt.entries) {
				t.Fatalf("len(Errors) = %d, want %d", len(got.Errors), len(tt.entries))
			}
			if !reflect.DeepEqual(got.Errors, tt.wantErrs) {
				t.Errorf("Errors = %q, want %q", got.Errors, tt.wantErrs)
			}
			if got.Valid() != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", got.Valid(), tt.wantValid)
			}
		})
	}
}

func TestValidateDoesNotModifyInput(t *testing.T) {
	entries := []string{" Math ", "math"}
	Validate(entries)
	if entries[0] != " Math " || entries[1] != "math" {
		t.Fatalf("entries modified: %q", entries)
	}
}

func TestValidationResultFields(t *testing.T) {
	res := Validate([]string{"Math", "", "math"})
	want := map[string]string{
		"subjects[1]": MsgRequired,
		"subjects[2]": MsgDuplicate,
	}
	if got := res.Fields(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
}

func TestCleanSubjects(t *testing.T) {
	got := CleanSubjects([]string{" Math ", "", "  ", "Science"})
	want := []string{"Math", "Science"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanSubjects = %q, want %q", got, want)
	}

	got = CleanSubjects([]string{"\uFEFFHindi\n", "\uFEFF"})
	want = []string{"Hindi"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("CleanSubjects with BOM = %q, want %q", got, want)
	}
}
