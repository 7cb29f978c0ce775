// Package collection owns the user's bookmarked papers.
package collection

import (
	"fmt"
	"strings"

	"github.com/matsen/rexplorer/internal/paper"
)

// CollectedPaper joins a paper with the keyword it was found under.
type CollectedPaper struct {
	Paper         paper.Paper `json:"paper"`
	SourceKeyword string      `json:"sourceKeyword"`
}

// KeyFunc derives the identity used to deduplicate papers.
type KeyFunc func(p paper.Paper) string

// TitleKey treats two papers with the same title as the same paper.
func TitleKey(p paper.Paper) string {
	return p.Title
}

// TitleAuthorYearKey distinguishes same-titled papers by first author and year.
func TitleAuthorYearKey(p paper.Paper) string {
	return fmt.Sprintf("%s\x00%s\x00%d", p.Title, strings.ToLower(p.FirstAuthor()), p.Year)
}

// KeyFuncByName resolves a configured identity strategy.
func KeyFuncByName(name string) (KeyFunc, error) {
	switch name {
	case "", "title":
		return TitleKey, nil
	case "title_author_year":
		return TitleAuthorYearKey, nil
	default:
		return nil, fmt.Errorf("unknown collection key %q (valid: title, title_author_year)", name)
	}
}

// Collection is an ordered set of papers with at most one entry per identity.
// It is an immutable value; Toggle and Remove return new collections.
type Collection struct {
	items []CollectedPaper
	key   KeyFunc
}

// New returns a collection holding items, keeping the first entry for any
// repeated identity. A nil key means TitleKey.
func New(key KeyFunc, items ...CollectedPaper) Collection {
	if key == nil {
		key = TitleKey
	}
	c := Collection{key: key}
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		k := key(item.Paper)
		if seen[k] {
			continue
		}
		seen[k] = true
		c.items = append(c.items, item)
	}
	return c
}

func (c Collection) keyFunc() KeyFunc {
	if c.key == nil {
		return TitleKey
	}
	return c.key
}

// Items returns a copy of the entries in insertion order.
func (c Collection) Items() []CollectedPaper {
	out := make([]CollectedPaper, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of entries.
func (c Collection) Len() int {
	return len(c.items)
}

// Contains reports whether a paper with the same identity is collected.
func (c Collection) Contains(p paper.Paper) bool {
	key := c.keyFunc()
	k := key(p)
	for _, item := range c.items {
		if key(item.Paper) == k {
			return true
		}
	}
	return false
}

// Toggle removes the paper if it is already collected (whatever its source
// keyword), otherwise appends it.
func (c Collection) Toggle(p paper.Paper, sourceKeyword string) Collection {
	if c.Contains(p) {
		return c.Remove(p)
	}
	items := make([]CollectedPaper, len(c.items), len(c.items)+1)
	copy(items, c.items)
	items = append(items, CollectedPaper{Paper: p, SourceKeyword: sourceKeyword})
	return Collection{items: items, key: c.key}
}

// Add appends the paper unless it is already collected.
func (c Collection) Add(p paper.Paper, sourceKeyword string) Collection {
	if c.Contains(p) {
		return c
	}
	return c.Toggle(p, sourceKeyword)
}

// Remove drops the entry with the same identity as p, if any.
func (c Collection) Remove(p paper.Paper) Collection {
	key := c.keyFunc()
	k := key(p)
	items := make([]CollectedPaper, 0, len(c.items))
	for _, item := range c.items {
		if key(item.Paper) != k {
			items = append(items, item)
		}
	}
	return Collection{items: items, key: c.key}
}

// FindByTitle returns the first entry whose title matches, ignoring case.
func (c Collection) FindByTitle(title string) (CollectedPaper, bool) {
	for _, item := range c.items {
		if strings.EqualFold(item.Paper.Title, title) {
			return item, true
		}
	}
	return CollectedPaper{}, false
}
