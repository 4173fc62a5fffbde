package embedding

import "testing"

func TestNormalizeFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []string
		want   string
	}{
		{"joins in order", []string{"a", "b", "c"}, "a b c"},
		{"trims each field", []string{"  hello  ", "\tworld\n"}, "hello world"},
		{"skips empty fields", []string{"a", "", "   ", "b"}, "a b"},
		{"all empty", []string{"", "  ", "\t\n"}, ""},
		{"no fields", nil, ""},
		{"interior whitespace kept", []string{"re-entrancy  guard"}, "re-entrancy  guard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeFields(tt.fields...); got != tt.want {
				t.Errorf("NormalizeFields(%q) = %q, want %q", tt.fields, got, tt.want)
			}
		})
	}
}

func TestNormalizeFields_Idempotent(t *testing.T) {
	once := NormalizeFields("  What is checked?  ", "", "Call order matters")
	twice := NormalizeFields(once)
	if once != twice {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}

func TestNormalizeLabeled(t *testing.T) {
	tests := []struct {
		name   string
		label  string
		fields []string
		want   string
	}{
		{"label prefixed", "Access Control", []string{"check owner"}, "Access Control: check owner"},
		{"label trimmed", "  Reentrancy ", []string{"guard state"}, "Reentrancy: guard state"},
		{"empty label", "", []string{"check owner"}, "check owner"},
		{"empty body drops label", "Access Control", []string{"", "  "}, ""},
		{"empty everything", "", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeLabeled(tt.label, tt.fields...); got != tt.want {
				t.Errorf("NormalizeLabeled(%q, %q) = %q, want %q", tt.label, tt.fields, got, tt.want)
			}
		})
	}
}
