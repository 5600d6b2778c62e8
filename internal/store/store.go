package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

// migrateV1 creates the schema. Take and file numbers deliberately
// carry no UNIQUE constraints: uniqueness is scoped per scene/shot and
// per enabled field, which the engine enforces before every write.
func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS projects (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		name           TEXT NOT NULL UNIQUE,
		camera_count   INTEGER NOT NULL DEFAULT 1,
		enabled_fields TEXT NOT NULL DEFAULT 'episode,sound,description,notes,goodTake',
		custom_fields  TEXT NOT NULL DEFAULT '',
		archived       INTEGER NOT NULL DEFAULT 0,
		created_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at     TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE TABLE IF NOT EXISTS takes (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		project_id         INTEGER NOT NULL REFERENCES projects(id),
		episode            TEXT NOT NULL DEFAULT '',
		scene              TEXT NOT NULL DEFAULT '',
		shot               TEXT NOT NULL DEFAULT '',
		take_number        INTEGER NOT NULL DEFAULT 0,
		sound_from         INTEGER,
		sound_to           INTEGER,
		classification     TEXT NOT NULL DEFAULT '',
		mos                INTEGER NOT NULL DEFAULT 0,
		no_slate           INTEGER NOT NULL DEFAULT 0,
		good_take          INTEGER NOT NULL DEFAULT 0,
		waste_camera       INTEGER NOT NULL DEFAULT 0,
		waste_sound        INTEGER NOT NULL DEFAULT 0,
		insert_sound_speed INTEGER,
		description        TEXT NOT NULL DEFAULT '',
		notes              TEXT NOT NULL DEFAULT '',
		custom             TEXT NOT NULL DEFAULT '{}',
		created_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at         TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_takes_project    ON takes(project_id);
	CREATE INDEX IF NOT EXISTS idx_takes_scene_shot ON takes(project_id, scene, shot);
	CREATE INDEX IF NOT EXISTS idx_takes_sound      ON takes(project_id, sound_from);

	CREATE TABLE IF NOT EXISTS take_cameras (
		take_id   INTEGER NOT NULL REFERENCES takes(id) ON DELETE CASCADE,
		cam       INTEGER NOT NULL,
		file_from INTEGER,
		file_to   INTEGER,
		rec       INTEGER NOT NULL DEFAULT 1,
		PRIMARY KEY (take_id, cam)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('last_project', ''),
		('export_dir',   '');
	`
	_, err := s.db.Exec(ddl)
	return err
}

// DefaultDBPath returns ~/.config/slatelog/slatelog.db
func DefaultDBPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "slatelog", "slatelog.db"), nil
}
