// Package export renders the collection and the session for use outside rex.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/explorer"
)

// CSVHeader is the header row of a collection CSV.
var CSVHeader = []string{"Title", "Authors", "Year", "Citations", "URL", "Source Keyword"}

// WriteCSV writes the collection as CSV. Authors are joined with "; " and
// a missing citation count is written as "N/A".
func WriteCSV(w io.Writer, items []collection.CollectedPaper) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, item := range items {
		p := item.Paper
		citations := "N/A"
		if p.Citations != nil {
			citations = strconv.Itoa(*p.Citations)
		}
		year := ""
		if p.Year > 0 {
			year = strconv.Itoa(p.Year)
		}
		row := []string{p.Title, strings.Join(p.Authors, "; "), year, citations, p.URL, item.SourceKeyword}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteJSON writes a session snapshot as indented JSON.
func WriteJSON(w io.Writer, snap explorer.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// ReadJSON reads a snapshot written by WriteJSON.
func ReadJSON(r io.Reader) (explorer.Snapshot, error) {
	var snap explorer.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return explorer.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}
