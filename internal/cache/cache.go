// Package cache persists the catalog in a local sqlite database so the
// browser can start without re-reading the JSON export.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/glebarez/sqlite"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

type DB struct {
	SQL  *sql.DB
	Path string
}

func Open(cfg *config.Config) (*DB, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if cfg.General.DataRoot == "" {
		return nil, errors.New("general.data_root required")
	}
	if err := os.MkdirAll(cfg.General.DataRoot, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(cfg.General.DataRoot, "catalog.db")
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout=5000&_pragma=journal_mode(WAL)", path)
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := initSchema(sqldb); err != nil {
		return nil, err
	}
	return &DB{SQL: sqldb, Path: path}, nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			model_name TEXT,
			quant_format TEXT,
			model_type TEXT,
			license TEXT,
			file_size INTEGER,
			downloads INTEGER DEFAULT 0,
			likes INTEGER DEFAULT 0,
			tags TEXT,
			last_modified TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_models_quant ON models(quant_format);`,
		`CREATE INDEX IF NOT EXISTS idx_models_type ON models(model_type);`,
		`CREATE INDEX IF NOT EXISTS idx_models_likes ON models(likes);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("init cache schema: %w", err)
		}
	}
	return nil
}

// UpsertModel inserts or updates one catalog row.
func (db *DB) UpsertModel(m catalog.Model) error {
	if m.ID == "" {
		return errors.New("model id is required")
	}
	tagsJSON, err := json.Marshal(m.Tags)
	if err != nil {
		return fmt.Errorf("serialize tags: %w", err)
	}
	_, err = db.SQL.Exec(`INSERT INTO models(id, model_name, quant_format, model_type, license, file_size, downloads, likes, tags, last_modified)
		VALUES(?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET
			model_name=excluded.model_name,
			quant_format=excluded.quant_format,
			model_type=excluded.model_type,
			license=excluded.license,
			file_size=excluded.file_size,
			downloads=excluded.downloads,
			likes=excluded.likes,
			tags=excluded.tags,
			last_modified=excluded.last_modified`,
		m.ID, m.ModelName, m.QuantFormat, m.ModelType, m.License, m.FileSize, m.Downloads, m.Likes, string(tagsJSON), m.LastModified)
	return err
}

// ReplaceAll swaps the cached catalog for the given one in a single
// transaction and records the export timestamp.
func (db *DB) ReplaceAll(models []catalog.Model, lastUpdated string) error {
	tx, err := db.SQL.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`DELETE FROM models`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO models(id, model_name, quant_format, model_type, license, file_size, downloads, likes, tags, last_modified)
		VALUES(?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, m := range models {
		if m.ID == "" {
			continue
		}
		tagsJSON, err := json.Marshal(m.Tags)
		if err != nil {
			return fmt.Errorf("serialize tags for %s: %w", m.ID, err)
		}
		if _, err := stmt.Exec(m.ID, m.ModelName, m.QuantFormat, m.ModelType, m.License, m.FileSize, m.Downloads, m.Likes, string(tagsJSON), m.LastModified); err != nil {
			return fmt.Errorf("insert %s: %w", m.ID, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES('last_updated', ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value`, lastUpdated); err != nil {
		return err
	}
	return tx.Commit()
}

// ListModels returns the cached catalog ordered by like count, plus the
// stored export timestamp.
func (db *DB) ListModels() ([]catalog.Model, string, error) {
	rows, err := db.SQL.Query(`SELECT id,
		COALESCE(model_name, ''),
		COALESCE(quant_format, ''),
		COALESCE(model_type, ''),
		COALESCE(license, ''),
		COALESCE(file_size, 0),
		COALESCE(downloads, 0),
		COALESCE(likes, 0),
		COALESCE(tags, ''),
		COALESCE(last_modified, '')
	  FROM models
	  ORDER BY likes DESC, id`)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var out []catalog.Model
	for rows.Next() {
		var m catalog.Model
		var tagsJSON string
		if err := rows.Scan(&m.ID, &m.ModelName, &m.QuantFormat, &m.ModelType, &m.License, &m.FileSize, &m.Downloads, &m.Likes, &tagsJSON, &m.LastModified); err != nil {
			return nil, "", err
		}
		if tagsJSON != "" {
			if err := json.Unmarshal([]byte(tagsJSON), &m.Tags); err != nil {
				return nil, "", fmt.Errorf("deserialize tags for %s: %w", m.ID, err)
			}
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var lastUpdated string
	err = db.SQL.QueryRow(`SELECT value FROM meta WHERE key='last_updated'`).Scan(&lastUpdated)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}
	return out, lastUpdated, nil
}

// Count returns the number of cached models.
func (db *DB) Count() (int64, error) {
	var n int64
	err := db.SQL.QueryRow(`SELECT COUNT(*) FROM models`).Scan(&n)
	return n, err
}
