// Package sqlite implements the document store on a single SQLite file.
// Documents are stored as JSON text and filtered with json_extract, which
// keeps the schema stable while the document shapes evolve.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"bilancio/internal/store"

	_ "modernc.org/sqlite"
)

var fieldPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (store.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get document %s: %w", path, err)
	}

	data, err := decodeData(raw)
	if err != nil {
		return store.Document{}, fmt.Errorf("decode document %s: %w", path, err)
	}
	_, id := store.SplitPath(path)
	return store.Document{ID: id, Path: path, Data: data}, nil
}

func (s *Store) Set(ctx context.Context, path string, data map[string]any, merge bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	doc := data
	if merge {
		var raw string
		err := tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Nothing to merge into, write as-is.
		case err != nil:
			return fmt.Errorf("read document %s: %w", path, err)
		default:
			existing, err := decodeData(raw)
			if err != nil {
				return fmt.Errorf("decode document %s: %w", path, err)
			}
			for k, v := range data {
				existing[k] = v
			}
			doc = existing
		}
	}

	if err := upsertTx(ctx, tx, path, doc); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Update(ctx context.Context, path string, data map[string]any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT data FROM documents WHERE path = ?`, path).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %s: %w", path, err)
	}

	existing, err := decodeData(raw)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", path, err)
	}
	for k, v := range data {
		existing[k] = v
	}

	if err := upsertTx(ctx, tx, path, existing); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("delete document %s: %w", path, err)
	}
	return nil
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection+"/"+id, data, false); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) ListAll(ctx context.Context, collection string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, data FROM documents WHERE collection = ? ORDER BY path ASC`, collection)
	if err != nil {
		return nil, fmt.Errorf("list collection %s: %w", collection, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func (s *Store) Query(ctx context.Context, collection string, filters []store.Filter, orderBy string) ([]store.Document, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, path, data FROM documents WHERE collection = ?`)
	args := []any{collection}

	for _, f := range filters {
		if !fieldPattern.MatchString(f.Field) {
			return nil, fmt.Errorf("invalid filter field %q", f.Field)
		}
		fmt.Fprintf(&sb, ` AND json_extract(data, '$.%s') = ?`, f.Field)
		args = append(args, f.Value)
	}

	if orderBy != "" {
		if !fieldPattern.MatchString(orderBy) {
			return nil, fmt.Errorf("invalid order field %q", orderBy)
		}
		fmt.Fprintf(&sb, ` ORDER BY json_extract(data, '$.%s') ASC`, orderBy)
	} else {
		sb.WriteString(` ORDER BY path ASC`)
	}

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query collection %s: %w", collection, err)
	}
	defer rows.Close()
	return scanDocuments(rows)
}

func upsertTx(ctx context.Context, tx *sql.Tx, path string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", path, err)
	}
	collection, id := store.SplitPath(path)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (path, collection, id, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		path, collection, id, string(raw), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write document %s: %w", path, err)
	}
	return nil
}

func scanDocuments(rows *sql.Rows) ([]store.Document, error) {
	var out []store.Document
	for rows.Next() {
		var id, path, raw string
		if err := rows.Scan(&id, &path, &raw); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, fmt.Errorf("decode document %s: %w", path, err)
		}
		out = append(out, store.Document{ID: id, Path: path, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return out, nil
}

func decodeData(raw string) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, err
	}
	return data, nil
}
