package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"reflow/internal/filetype"
	"reflow/internal/sources"
)

type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			manifest TEXT PRIMARY KEY,
			timescale TEXT,
			top_module TEXT,
			resolved_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS files (
			manifest TEXT,
			position INTEGER,
			path TEXT,
			mime TEXT,
			PRIMARY KEY (manifest, position)
		);`,
		`CREATE TABLE IF NOT EXISTS manifests (
			manifest TEXT,
			position INTEGER,
			path TEXT,
			PRIMARY KEY (manifest, position)
		);`,
		`CREATE TABLE IF NOT EXISTS params (
			manifest TEXT,
			name TEXT,
			position INTEGER,
			value TEXT,
			PRIMARY KEY (manifest, name, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);`,
		`CREATE INDEX IF NOT EXISTS idx_manifests_path ON manifests(path);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) SaveOutput(ctx context.Context, out *sources.Output) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot sync: drop the previous rows of this manifest.
	for _, table := range []string{"files", "manifests", "params"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE manifest = ?", out.Manifest); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resolutions (manifest, timescale, top_module, resolved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(manifest) DO UPDATE SET
			timescale=excluded.timescale,
			top_module=excluded.top_module,
			resolved_at=excluded.resolved_at
	`, out.Manifest, out.Timescale, out.TopModule, time.Now().UTC())
	if err != nil {
		return err
	}

	fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO files (manifest, position, path, mime) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer fileStmt.Close()

	for i, f := range out.Files {
		if _, err := fileStmt.ExecContext(ctx, out.Manifest, i, f.Path, string(f.Mime)); err != nil {
			return err
		}
	}

	manifestStmt, err := tx.PrepareContext(ctx, `INSERT INTO manifests (manifest, position, path) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer manifestStmt.Close()

	for i, m := range out.Manifests {
		if _, err := manifestStmt.ExecContext(ctx, out.Manifest, i, m); err != nil {
			return err
		}
	}

	paramStmt, err := tx.PrepareContext(ctx, `INSERT INTO params (manifest, name, position, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer paramStmt.Close()

	for name, values := range out.Params {
		// an empty list is kept as a single NULL row
		if len(values) == 0 {
			if _, err := paramStmt.ExecContext(ctx, out.Manifest, name, 0, nil); err != nil {
				return err
			}
			continue
		}
		for i, v := range values {
			if _, err := paramStmt.ExecContext(ctx, out.Manifest, name, i, v); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) LoadOutput(ctx context.Context, manifest string) (*sources.Output, error) {
	out := &sources.Output{Manifest: manifest, Params: make(map[string][]string)}

	row := s.db.QueryRowContext(ctx, "SELECT timescale, top_module FROM resolutions WHERE manifest = ?", manifest)
	if err := row.Scan(&out.Timescale, &out.TopModule); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", manifest, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load %s: %w", manifest, err)
	}

	rows, err := s.db.QueryContext(ctx, "SELECT path, mime FROM files WHERE manifest = ? ORDER BY position", manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f sources.SourceFile
		var mime string
		if err := rows.Scan(&f.Path, &mime); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		f.Mime = filetype.Mime(mime)
		out.Files = append(out.Files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out.Manifests, err = s.queryStrings(ctx, "SELECT path FROM manifests WHERE manifest = ? ORDER BY position", manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to query manifests: %w", err)
	}

	paramRows, err := s.db.QueryContext(ctx, "SELECT name, value FROM params WHERE manifest = ? ORDER BY name, position", manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to query params: %w", err)
	}
	defer paramRows.Close()

	for paramRows.Next() {
		var name string
		var value sql.NullString
		if err := paramRows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to scan param: %w", err)
		}
		if !value.Valid {
			out.Params[name] = []string{}
			continue
		}
		out.Params[name] = append(out.Params[name], value.String)
	}
	return out, paramRows.Err()
}

func (s *SQLiteStore) ListManifests(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, "SELECT manifest FROM resolutions ORDER BY manifest")
}

func (s *SQLiteStore) FindManifestsByFile(ctx context.Context, path string) ([]string, error) {
	return s.queryStrings(ctx, `
		SELECT manifest FROM files WHERE path = ?
		UNION
		SELECT manifest FROM manifests WHERE path = ?
		ORDER BY manifest
	`, path, path)
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
