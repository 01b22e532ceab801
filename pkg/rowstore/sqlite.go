package rowstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLite keeps every collection in one table of JSON documents, so rows
// decode exactly like the REST driver's responses.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite creates or opens the database file at path.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer connection; a statement that reads then writes can
	// otherwise fail with SQLITE_BUSY_SNAPSHOT under WAL.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS records (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			doc        TEXT NOT NULL CHECK (json_valid(doc)),
			PRIMARY KEY (collection, id)
		);
		CREATE UNIQUE INDEX IF NOT EXISTS records_slug
			ON records (collection, json_extract(doc, '$.slug'));
	`)
	return err
}

// Path returns the database file path.
func (s *SQLite) Path() string {
	return s.path
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Select(ctx context.Context, q Query, dest any) error {
	if err := q.Validate(); err != nil {
		return fmt.Errorf("rowstore.Select: %w", err)
	}
	docs, err := s.query(ctx, q)
	if err != nil {
		return fmt.Errorf("rowstore.Select %s: %w", q.Table, err)
	}
	if err := json.Unmarshal(joinDocs(docs), dest); err != nil {
		return fmt.Errorf("rowstore.Select %s: decode rows: %w", q.Table, err)
	}
	return nil
}

func (s *SQLite) Single(ctx context.Context, q Query, dest any) error {
	q = q.Limit(2)
	if err := q.Validate(); err != nil {
		return fmt.Errorf("rowstore.Single: %w", err)
	}
	docs, err := s.query(ctx, q)
	if err != nil {
		return fmt.Errorf("rowstore.Single %s: %w", q.Table, err)
	}
	return decodeSingle(docs, dest)
}

func (s *SQLite) query(ctx context.Context, q Query) ([]json.RawMessage, error) {
	stmt, args := buildSelect(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []json.RawMessage
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		docs = append(docs, json.RawMessage(doc))
	}
	return docs, rows.Err()
}

func buildSelect(q Query) (string, []any) {
	var b strings.Builder
	args := []any{q.Table}
	b.WriteString("SELECT doc FROM records WHERE collection = ?")
	for _, f := range q.Filters {
		op := "="
		if f.Op == OpNeq {
			op = "!="
		}
		fmt.Fprintf(&b, " AND json_extract(doc, '$.%s') %s ?", f.Column, op)
		args = append(args, bindValue(f.Value))
	}
	if q.OrderBy != nil {
		dir := "DESC"
		if q.OrderBy.Ascending {
			dir = "ASC"
		}
		// Timestamps compare as julian days: RFC 3339 text with a fractional
		// second does not sort lexically. Other values fall through as-is.
		col := fmt.Sprintf("json_extract(doc, '$.%s')", q.OrderBy.Column)
		fmt.Fprintf(&b, " ORDER BY COALESCE(julianday(%s), %s) %s, id", col, col, dir)
	}
	if q.MaxRows > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.MaxRows)
	}
	return b.String(), args
}

// bindValue maps Go values onto what json_extract yields: JSON booleans
// come back as 1 and 0.
func bindValue(v any) any {
	switch x := v.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

func joinDocs(docs []json.RawMessage) []byte {
	out := []byte{'['}
	for i, d := range docs {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, d...)
	}
	return append(out, ']')
}

func (s *SQLite) Increment(ctx context.Context, table, id, column string) (int, error) {
	if err := From(table).Eq(column, nil).Validate(); err != nil {
		return 0, fmt.Errorf("rowstore.Increment: %w", err)
	}
	path := "$." + column
	var n int
	err := s.db.QueryRowContext(ctx, `
		UPDATE records
		SET doc = json_set(doc, ?, COALESCE(json_extract(doc, ?), 0) + 1)
		WHERE collection = ? AND id = ?
		RETURNING json_extract(doc, ?)`,
		path, path, table, id, path,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("rowstore.Increment %s/%s: %w", table, id, ErrNoRows)
	}
	if err != nil {
		return 0, fmt.Errorf("rowstore.Increment %s/%s: %w", table, id, err)
	}
	return n, nil
}

func (s *SQLite) Insert(ctx context.Context, table string, row any) error {
	id, doc, err := encodeRow(table, row)
	if err != nil {
		return fmt.Errorf("rowstore.Insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records (collection, id, doc) VALUES (?, ?, ?)`,
		table, id, doc,
	); err != nil {
		return fmt.Errorf("rowstore.Insert %s: %w", table, err)
	}
	return nil
}

// Upsert inserts or replaces a row by id. A stored download_count is never
// lowered by the replacement.
func (s *SQLite) Upsert(ctx context.Context, table string, row any) error {
	id, doc, err := encodeRow(table, row)
	if err != nil {
		return fmt.Errorf("rowstore.Upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO records (collection, id, doc) VALUES (?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET doc = CASE
			WHEN json_type(records.doc, '$.download_count') IS NOT NULL
			THEN json_set(excluded.doc, '$.download_count', MAX(
				json_extract(records.doc, '$.download_count'),
				COALESCE(json_extract(excluded.doc, '$.download_count'), 0)))
			ELSE excluded.doc
		END`,
		table, id, doc,
	); err != nil {
		return fmt.Errorf("rowstore.Upsert %s/%s: %w", table, id, err)
	}
	return nil
}

func encodeRow(table string, row any) (string, string, error) {
	if err := From(table).Validate(); err != nil {
		return "", "", err
	}
	data, err := json.Marshal(row)
	if err != nil {
		return "", "", fmt.Errorf("marshal row: %w", err)
	}
	var head struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return "", "", fmt.Errorf("row is not an object: %w", err)
	}
	if head.ID == "" {
		return "", "", fmt.Errorf("row has no id")
	}
	return head.ID, string(data), nil
}
