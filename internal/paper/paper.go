// Package paper defines the literature types shared by finders and the collection.
package paper

import "strings"

// Paper is one literature result for a keyword.
type Paper struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Year      int      `json:"year"`
	Abstract  string   `json:"abstract"`
	URL       string   `json:"url"`
	Citations *int     `json:"citations,omitempty"` // nil when the source has no count
}

// FirstAuthor returns the first listed author, or "" when there is none.
func (p Paper) FirstAuthor() string {
	if len(p.Authors) == 0 {
		return ""
	}
	return p.Authors[0]
}

// FormatAuthors abbreviates an author list for display.
func FormatAuthors(authors []string) string {
	if len(authors) == 0 {
		return "Unknown"
	}
	if len(authors) > 3 {
		return strings.Join(authors[:3], ", ") + " et al."
	}
	return strings.Join(authors, ", ")
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}
