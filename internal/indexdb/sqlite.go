// Package indexdb records export runs in a local SQLite database so the
// contents of past datasets can be queried without re-reading them.
package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"craftexport.ai/internal/content"
	"craftexport.ai/internal/export"
	"craftexport.ai/internal/normalize"
)

const schemaVersion = "1"

type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at TEXT NOT NULL,
			version TEXT NOT NULL,
			input_digest TEXT NOT NULL,
			sprites_hash TEXT NOT NULL,
			width INTEGER NOT NULL,
			items INTEGER NOT NULL,
			normal_recipes INTEGER NOT NULL,
			alternate_recipes INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			failures INTEGER NOT NULL,
			report_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS icons (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			path TEXT NOT NULL,
			col INTEGER NOT NULL,
			row INTEGER NOT NULL,
			source_json TEXT,
			PRIMARY KEY(run_id, path)
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			type TEXT NOT NULL,
			grp TEXT NOT NULL,
			subgroup TEXT NOT NULL,
			localized_name TEXT,
			PRIMARY KEY(run_id, name)
		);`,
		`CREATE TABLE IF NOT EXISTS recipes (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			variant TEXT NOT NULL,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			energy_required REAL NOT NULL,
			json TEXT NOT NULL,
			PRIMARY KEY(run_id, variant, name)
		);`,
		`CREATE INDEX IF NOT EXISTS runs_version ON runs(version);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	_, err := db.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version',?)`, schemaVersion)
	return err
}

func (s *SQLiteIndex) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores one export and returns its run id. inputDigest identifies
// the content dump the dataset was built from.
func (s *SQLiteIndex) RecordRun(ctx context.Context, d *export.Dataset, rep export.Report, inputDigest string) (int64, error) {
	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return 0, err
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs(created_at,version,input_digest,sprites_hash,width,items,normal_recipes,alternate_recipes,entities,failures,report_json)
		VALUES(?,?,?,?,?,?,?,?,?,?,?)`,
		now, d.Version, inputDigest, d.Sprites.Hash, d.Width,
		len(d.Items), len(d.NormalRecipes), len(d.AlternateRecipes), d.EntityCount(), rep.Failures, string(reportJSON))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	iconStmt, err := tx.PrepareContext(ctx, `INSERT INTO icons(run_id,path,col,row,source_json) VALUES(?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer iconStmt.Close()
	for _, ic := range d.Icons {
		var src any
		if ic.Source != nil {
			b, err := json.Marshal(ic.Source)
			if err != nil {
				return 0, err
			}
			src = string(b)
		}
		if _, err := iconStmt.ExecContext(ctx, id, ic.Path, ic.Col, ic.Row, src); err != nil {
			return 0, fmt.Errorf("insert icon %s: %w", ic.Path, err)
		}
	}

	itemStmt, err := tx.PrepareContext(ctx, `INSERT INTO items(run_id,name,type,grp,subgroup,localized_name) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer itemStmt.Close()
	for _, name := range content.SortedKeys(d.Items) {
		it := d.Items[name]
		if _, err := itemStmt.ExecContext(ctx, id, name, it.Type, it.Group, it.Subgroup, it.LocalizedName); err != nil {
			return 0, fmt.Errorf("insert item %s: %w", name, err)
		}
	}

	recipeStmt, err := tx.PrepareContext(ctx, `INSERT INTO recipes(run_id,variant,name,category,energy_required,json) VALUES(?,?,?,?,?,?)`)
	if err != nil {
		return 0, err
	}
	defer recipeStmt.Close()
	for variant, m := range map[string]map[string]*normalize.Recipe{
		normalize.Standard.Name:  d.NormalRecipes,
		normalize.Alternate.Name: d.AlternateRecipes,
	} {
		for _, name := range content.SortedKeys(m) {
			r := m[name]
			b, err := json.Marshal(r)
			if err != nil {
				return 0, err
			}
			if _, err := recipeStmt.ExecContext(ctx, id, variant, name, r.Category, r.EnergyRequired, string(b)); err != nil {
				return 0, fmt.Errorf("insert recipe %s/%s: %w", name, variant, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}
