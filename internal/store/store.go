// Package store exports a documentation tree to a SQLite database so other
// tools can query it without parsing C++.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/xonecas/clong/internal/doctree"
)

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
	id        INTEGER PRIMARY KEY,
	parent    INTEGER REFERENCES nodes(id),
	depth     INTEGER NOT NULL,
	decl      TEXT NOT NULL,
	name      TEXT NOT NULL,
	kind      TEXT NOT NULL,
	signature TEXT NOT NULL,
	comment   TEXT NOT NULL,
	file      TEXT NOT NULL,
	line      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS functions (
	position INTEGER PRIMARY KEY,
	node     INTEGER NOT NULL REFERENCES nodes(id)
);

CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent);
CREATE INDEX IF NOT EXISTS idx_nodes_name ON nodes(name);
`

// Row is one stored node. Parent is 0 for top-level nodes.
type Row struct {
	ID        int64
	Parent    int64
	Depth     int
	Decl      string
	Name      string
	Kind      string
	Signature string
	Comment   string
	File      string
	Line      int
}

// DB is a documentation database.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Open creates or opens a database at the given path.
func Open(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open docs db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database. Safe on a nil receiver.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	return d.db.Close()
}

// Save replaces the database contents with the tree under root and the
// functions index. Node ids follow pre-order, starting at 1.
func (d *DB) Save(ctx context.Context, root *doctree.Node, functions []*doctree.Node, desc doctree.Describer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, stmt := range []string{"DELETE FROM functions", "DELETE FROM nodes"} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO nodes (id, parent, depth, decl, name, kind, signature, comment, file, line)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer insert.Close()

	kinds, _ := desc.(doctree.Kinder)
	loc, _ := desc.(doctree.Locator)

	ids := make(map[*doctree.Node]int64)
	var walkErr error
	doctree.Walk(root, func(n *doctree.Node, depth int) {
		if walkErr != nil {
			return
		}
		id := int64(len(ids) + 1)
		ids[n] = id

		var parent sql.NullInt64
		if n.Parent != nil && !n.Parent.IsRoot() {
			parent = sql.NullInt64{Int64: ids[n.Parent], Valid: true}
		}
		var kind, file string
		var line int
		if kinds != nil {
			kind = kinds.Kind(n.Decl)
		}
		if loc != nil {
			file, line = loc.Location(n.Decl)
		}
		_, walkErr = insert.ExecContext(ctx, id, parent, depth, n.Decl.String(),
			desc.Name(n.Decl), kind, desc.Signature(n.Decl), n.Comment, file, line)
	})
	if walkErr != nil {
		return fmt.Errorf("insert node: %w", walkErr)
	}

	for i, fn := range functions {
		id, ok := ids[fn]
		if !ok {
			return fmt.Errorf("function %s is not part of the tree", fn.Decl)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO functions (position, node) VALUES (?, ?)", i, id); err != nil {
			return fmt.Errorf("insert function: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debug().Int("nodes", len(ids)).Int("functions", len(functions)).Msg("docs db saved")
	return nil
}

const selectRow = `SELECT n.id, COALESCE(n.parent, 0), n.depth, n.decl, n.name, n.kind,
	n.signature, n.comment, n.file, n.line FROM nodes n`

// Nodes returns every stored node in pre-order.
func (d *DB) Nodes(ctx context.Context) ([]Row, error) {
	return d.query(ctx, selectRow+" ORDER BY n.id")
}

// Children returns the nodes directly under parent; 0 lists the top level.
func (d *DB) Children(ctx context.Context, parent int64) ([]Row, error) {
	if parent == 0 {
		return d.query(ctx, selectRow+" WHERE n.parent IS NULL ORDER BY n.id")
	}
	return d.query(ctx, selectRow+" WHERE n.parent = ? ORDER BY n.id", parent)
}

// Functions returns the functions index in registration order.
func (d *DB) Functions(ctx context.Context) ([]Row, error) {
	return d.query(ctx, selectRow+" JOIN functions f ON f.node = n.id ORDER BY f.position")
}

// Search returns nodes whose name or comment contains every keyword of query,
// case-insensitively. An empty query matches nothing.
func (d *DB) Search(ctx context.Context, query string) ([]Row, error) {
	kw := tokenize(query)
	if len(kw) == 0 {
		return nil, nil
	}
	conds := make([]string, len(kw))
	args := make([]any, 0, 2*len(kw))
	for i, k := range kw {
		conds[i] = "(lower(n.name) LIKE ? ESCAPE '\\' OR lower(n.comment) LIKE ? ESCAPE '\\')"
		pat := "%" + escapeLike(k) + "%"
		args = append(args, pat, pat)
	}
	return d.query(ctx, selectRow+" WHERE "+strings.Join(conds, " AND ")+" ORDER BY n.id", args...)
}

func (d *DB) query(ctx context.Context, q string, args ...any) ([]Row, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Parent, &r.Depth, &r.Decl, &r.Name, &r.Kind,
			&r.Signature, &r.Comment, &r.File, &r.Line); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// tokenize splits a query into lowercase keywords, dropping punctuation.
func tokenize(query string) []string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	var out []string
	for _, w := range words {
		w = strings.Trim(w, ".,;:!?\"'()[]{}")
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
