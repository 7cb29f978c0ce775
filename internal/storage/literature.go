package storage

import (
	"io"

	"github.com/matsen/rexplorer/internal/literature"
)

// LoadLiteratureCache reads persisted literature results, least recently
// used first. A missing file yields none.
func LoadLiteratureCache(path string) ([]literature.Entry, error) {
	return ReadJSONL[literature.Entry](path)
}

// SaveLiteratureCache replaces the persisted literature results.
func SaveLiteratureCache(path string, entries []literature.Entry) error {
	return writeAtomic(path, func(w io.Writer) error {
		return EncodeJSONL(w, entries)
	})
}
