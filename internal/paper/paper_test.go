package paper

import "testing"

func TestFormatAuthors(t *testing.T) {
	tests := []struct {
		name    string
		authors []string
		want    string
	}{
		{"none", nil, "Unknown"},
		{"one", []string{"Ada Lovelace"}, "Ada Lovelace"},
		{"three", []string{"A", "B", "C"}, "A, B, C"},
		{"many", []string{"A", "B", "C", "D"}, "A, B, C et al."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAuthors(tt.authors); got != tt.want {
				t.Errorf("FormatAuthors() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFirstAuthor(t *testing.T) {
	if got := (Paper{}).FirstAuthor(); got != "" {
		t.Errorf("FirstAuthor() = %q, want empty", got)
	}
	p := Paper{Authors: []string{"Smith", "Jones"}}
	if got := p.FirstAuthor(); got != "Smith" {
		t.Errorf("FirstAuthor() = %q, want Smith", got)
	}
}
