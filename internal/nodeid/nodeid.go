// Package nodeid builds deterministic identifiers for keyword tree nodes.
//
// A child id is always its parent id followed by a "/" separator and a
// child segment, so every id carries its full lineage. The separator never
// appears inside a segment, which makes ancestry tests segment-exact:
// "ai" is not an ancestor of "ai2/..." even though it is a string prefix.
package nodeid

import (
	"strconv"
	"strings"
	"unicode"
)

// Separator joins lineage segments.
const Separator = "/"

// Normalize lowercases a keyword and collapses whitespace runs into single
// hyphens. The separator is replaced so a keyword can never fake a segment
// boundary.
func Normalize(keyword string) string {
	fields := strings.FieldsFunc(keyword, func(r rune) bool {
		return unicode.IsSpace(r) || r == '/'
	})
	return strings.ToLower(strings.Join(fields, "-"))
}

// MakeRootID returns the id of a root node for keyword. Occurrence
// separates roots whose keywords normalize alike: 0 gives the bare
// normalized keyword, n gives it an "-n+1" suffix.
func MakeRootID(keyword string, occurrence int) string {
	if occurrence == 0 {
		return Normalize(keyword)
	}
	return Normalize(keyword) + "-" + strconv.Itoa(occurrence+1)
}

// MakeChildID returns the id of the child at siblingIndex under parentID.
// The sibling index disambiguates siblings with the same keyword.
func MakeChildID(parentID, keyword string, siblingIndex int) string {
	return parentID + Separator + Normalize(keyword) + "-" + strconv.Itoa(siblingIndex)
}

// IsAncestor reports whether ancestorID is a strict ancestor of id.
func IsAncestor(ancestorID, id string) bool {
	return strings.HasPrefix(id, ancestorID+Separator)
}
