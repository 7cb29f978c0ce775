package export

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/paper"
)

// ToBibTeX converts a paper to a BibTeX @misc entry with the given key.
// Literature results carry no venue, so every entry is @misc.
func ToBibTeX(key string, p paper.Paper, sourceKeyword string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "@misc{%s,\n", key)
	if len(p.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", escapeLatex(strings.Join(p.Authors, " and ")))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(p.Title))
	if p.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", p.Year)
	}
	if validURL(p.URL) {
		fmt.Fprintf(&b, "  url = {%s},\n", p.URL)
	}
	if sourceKeyword != "" {
		fmt.Fprintf(&b, "  keywords = {%s},\n", escapeLatex(sourceKeyword))
	}
	if p.Abstract != "" {
		fmt.Fprintf(&b, "  abstract = {%s},\n", escapeLatex(p.Abstract))
	}
	b.WriteString("}\n")

	return b.String()
}

// WriteBibTeX writes the collection as BibTeX, one entry per paper. Keys
// are first-author surname plus year, made unique with a letter suffix.
func WriteBibTeX(w io.Writer, items []collection.CollectedPaper) error {
	used := make(map[string]int)
	for i, item := range items {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		key := citeKey(item.Paper)
		n := used[key]
		used[key] = n + 1
		if n > 0 {
			key += string(rune('a' + n - 1))
		}
		if _, err := io.WriteString(w, ToBibTeX(key, item.Paper, item.SourceKeyword)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	return nil
}

// citeKey derives a key such as "Smith2020" or "Anon" from a paper.
func citeKey(p paper.Paper) string {
	name := "Anon"
	if fields := strings.Fields(p.FirstAuthor()); len(fields) > 0 {
		name = fields[len(fields)-1]
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "Anon"
	}
	if p.Year > 0 {
		return fmt.Sprintf("%s%d", name, p.Year)
	}
	return name
}

// validURL rejects the "#" placeholder some sources use for a missing link.
func validURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	// Order matters: & must be first (before other escapes that might produce &)
	replacer := strings.NewReplacer(
		"&", `\&`,
		"%", `\%`,
		"$", `\$`,
		"#", `\#`,
		"_", `\_`,
		"{", `\{`,
		"}", `\}`,
		"~", `\textasciitilde{}`,
		"^", `\textasciicircum{}`,
	)
	return replacer.Replace(s)
}
