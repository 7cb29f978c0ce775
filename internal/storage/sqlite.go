package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/matsen/rexplorer/internal/collection"
	"github.com/matsen/rexplorer/internal/paper"
)

// DB is a SQLite full-text index over the collected papers. It is a cache:
// the session file is the source of truth and Rebuild recreates the index.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `title, authors_json, year, abstract, url, citations, source_keyword`

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			pos INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			authors_json TEXT NOT NULL,
			year INTEGER NOT NULL,
			abstract TEXT,
			url TEXT,
			citations INTEGER,
			source_keyword TEXT NOT NULL
		);

		CREATE VIRTUAL TABLE IF NOT EXISTS papers_fts USING fts5(
			pos UNINDEXED,
			title,
			abstract,
			authors_text,
			source_keyword
		);
	`

	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the index and fills it with items in order.
func (d *DB) Rebuild(items []collection.CollectedPaper) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM papers"); err != nil {
		return 0, fmt.Errorf("clearing papers table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM papers_fts"); err != nil {
		return 0, fmt.Errorf("clearing papers_fts table: %w", err)
	}

	papersStmt, err := tx.Prepare(`
		INSERT INTO papers (pos, title, authors_json, year, abstract, url, citations, source_keyword)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing papers insert: %w", err)
	}
	defer papersStmt.Close()

	ftsStmt, err := tx.Prepare(`
		INSERT INTO papers_fts (pos, title, abstract, authors_text, source_keyword)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, item := range items {
		p := item.Paper
		authorsJSON, err := json.Marshal(p.Authors)
		if err != nil {
			return 0, fmt.Errorf("marshaling authors for %q: %w", p.Title, err)
		}

		var citations sql.NullInt64
		if p.Citations != nil {
			citations = sql.NullInt64{Int64: int64(*p.Citations), Valid: true}
		}

		if _, err := papersStmt.Exec(i, p.Title, string(authorsJSON), p.Year,
			nullableStringValue(p.Abstract), nullableStringValue(p.URL), citations, item.SourceKeyword); err != nil {
			return 0, fmt.Errorf("inserting paper %q: %w", p.Title, err)
		}

		if _, err := ftsStmt.Exec(i, p.Title, p.Abstract, strings.Join(p.Authors, ", "), item.SourceKeyword); err != nil {
			return 0, fmt.Errorf("inserting fts for %q: %w", p.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(items), nil
}

// Search performs a full-text search across title, abstract, authors and
// source keyword.
func (d *DB) Search(query string, limit int) ([]collection.CollectedPaper, error) {
	return d.match(prepareFTSQuery(query), limit)
}

// SearchField searches a single field: title, author or keyword.
func (d *DB) SearchField(field, value string, limit int) ([]collection.CollectedPaper, error) {
	var column string
	switch field {
	case "title":
		column = "title"
	case "author":
		column = "authors_text"
	case "keyword":
		column = "source_keyword"
	default:
		return nil, fmt.Errorf("unknown search field: %s", field)
	}
	return d.match(column+":"+prepareFTSQuery(value), limit)
}

func (d *DB) match(ftsQuery string, limit int) ([]collection.CollectedPaper, error) {
	rows, err := d.db.Query(`
		SELECT `+selectPaperFields+`
		FROM papers
		WHERE pos IN (SELECT pos FROM papers_fts WHERE papers_fts MATCH ?)
		ORDER BY pos
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// ListAll returns the indexed papers in collection order, optionally limited.
func (d *DB) ListAll(limit int) ([]collection.CollectedPaper, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers ORDER BY pos`
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = []interface{}{limit}
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	return scanPapers(rows)
}

// Count returns the number of indexed papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

func scanPapers(rows *sql.Rows) ([]collection.CollectedPaper, error) {
	var items []collection.CollectedPaper
	for rows.Next() {
		var (
			item          collection.CollectedPaper
			authorsJSON   string
			abstract, url sql.NullString
			citations     sql.NullInt64
		)
		if err := rows.Scan(&item.Paper.Title, &authorsJSON, &item.Paper.Year,
			&abstract, &url, &citations, &item.SourceKeyword); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(authorsJSON), &item.Paper.Authors); err != nil {
			return nil, fmt.Errorf("parsing authors JSON for %q: %w", item.Paper.Title, err)
		}
		item.Paper.Abstract = abstract.String
		item.Paper.URL = url.String
		if citations.Valid {
			item.Paper.Citations = paper.IntPtr(int(citations.Int64))
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// prepareFTSQuery escapes special characters for FTS5 queries.
func prepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// FTS5 uses double quotes for phrase matching
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}
