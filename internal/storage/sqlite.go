package storage

import (
	"database/sql"
	"fmt"

	"github.com/matsen/labsite/internal/coauthor"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite graph cache. It is derived data, rebuilt from the publication
// list on every site build.
type DB struct {
	db *sql.DB
}

// AuthorRow is an author with their publication count.
type AuthorRow struct {
	Name             string `json:"name"`
	Affiliation      string `json:"affiliation,omitempty"`
	PublicationCount int    `json:"publication_count"`
	Highlighted      bool   `json:"highlighted"`
}

// CoauthorRow is one collaborator of a given author.
type CoauthorRow struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

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
		CREATE TABLE IF NOT EXISTS authors (
			name TEXT PRIMARY KEY,
			affiliation TEXT,
			publication_count INTEGER NOT NULL,
			highlighted INTEGER NOT NULL
		);

		-- One row per edge; source < target
		CREATE TABLE IF NOT EXISTS coauthors (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			weight INTEGER NOT NULL,
			PRIMARY KEY (source, target)
		);

		CREATE INDEX IF NOT EXISTS idx_coauthors_target ON coauthors(target);
	`
	_, err := db.Exec(schema)
	return err
}

// RebuildFromGraph replaces the cache contents with the given graph.
func (d *DB) RebuildFromGraph(g coauthor.Graph) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM authors"); err != nil {
		return fmt.Errorf("clearing authors: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM coauthors"); err != nil {
		return fmt.Errorf("clearing coauthors: %w", err)
	}

	authorStmt, err := tx.Prepare(`
		INSERT INTO authors (name, affiliation, publication_count, highlighted)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing author insert: %w", err)
	}
	defer authorStmt.Close()

	for _, n := range g.Nodes {
		if _, err := authorStmt.Exec(n.Name, n.Affiliation, n.PublicationCount, n.Highlighted); err != nil {
			return fmt.Errorf("inserting author %s: %w", n.Name, err)
		}
	}

	edgeStmt, err := tx.Prepare(`INSERT INTO coauthors (source, target, weight) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing coauthor insert: %w", err)
	}
	defer edgeStmt.Close()

	for _, e := range g.Edges {
		if _, err := edgeStmt.Exec(e.Source, e.Target, e.Weight); err != nil {
			return fmt.Errorf("inserting edge %s-%s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing graph: %w", err)
	}
	return nil
}

// Authors lists authors by descending publication count, then name.
// A limit of 0 or less returns all authors.
func (d *DB) Authors(limit int) ([]AuthorRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
		SELECT name, COALESCE(affiliation, ''), publication_count, highlighted
		FROM authors
		ORDER BY publication_count DESC, name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing authors: %w", err)
	}
	defer rows.Close()

	var out []AuthorRow
	for rows.Next() {
		var a AuthorRow
		if err := rows.Scan(&a.Name, &a.Affiliation, &a.PublicationCount, &a.Highlighted); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAuthor returns the author with the given name, or nil if not cached.
func (d *DB) GetAuthor(name string) (*AuthorRow, error) {
	var a AuthorRow
	err := d.db.QueryRow(`
		SELECT name, COALESCE(affiliation, ''), publication_count, highlighted
		FROM authors WHERE name = ?`, name).
		Scan(&a.Name, &a.Affiliation, &a.PublicationCount, &a.Highlighted)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting author %s: %w", name, err)
	}
	return &a, nil
}

// TopCoauthors lists an author's collaborators by descending shared-publication count.
// A limit of 0 or less returns all of them.
func (d *DB) TopCoauthors(name string, limit int) ([]CoauthorRow, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
		SELECT other, weight FROM (
			SELECT target AS other, weight FROM coauthors WHERE source = ?
			UNION ALL
			SELECT source AS other, weight FROM coauthors WHERE target = ?
		)
		ORDER BY weight DESC, other ASC
		LIMIT ?`, name, name, limit)
	if err != nil {
		return nil, fmt.Errorf("querying coauthors of %s: %w", name, err)
	}
	defer rows.Close()

	var out []CoauthorRow
	for rows.Next() {
		var c CoauthorRow
		if err := rows.Scan(&c.Name, &c.Weight); err != nil {
			return nil, fmt.Errorf("scanning coauthor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// EdgeCount returns the number of cached co-authorship edges.
func (d *DB) EdgeCount() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM coauthors").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting edges: %w", err)
	}
	return n, nil
}
