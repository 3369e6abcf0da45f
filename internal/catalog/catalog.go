// Package catalog is the station's relational catalog: audio-file
// rows, their tag-snapshot history, last-modified bookkeeping, and the
// schema migrations between them. It is the only code that writes to
// the audio_files or id3_tags tables; every other reader treats them
// as read-only. Grounded on chirp/library/database.py and
// chirp/library/schema.py.
package catalog

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Catalog wraps the sqlite connection backing the music archive's
// relational store.
type Catalog struct {
	db   *sql.DB
	path string
}

// Open connects to the catalog file at path, creating it if absent,
// and migrates it to catalog.LatestVersion unless autoMigrate is
// false (tests that want to inspect a pre-migration file pass false).
func Open(path string, autoMigrate bool) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	c := &Catalog{db: db, path: path}
	if autoMigrate {
		if err := c.AutoMigrate(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return c, nil
}

// Close releases the underlying connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) userVersion() (int, error) {
	var v int
	if err := c.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("catalog: read user_version: %w", err)
	}
	return v, nil
}

func (c *Catalog) hasTable(name string) (bool, error) {
	var found string
	err := c.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", name,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("catalog: probe table %s: %w", name, err)
	}
	return true, nil
}

// AutoMigrate determines whether the catalog's schema is outdated and,
// if so, migrates to LatestVersion. A user_version of 0 is ambiguous
// between "brand new file" and "pre-versioning legacy file", so it is
// disambiguated by probing for LegacyTables: if both are present,
// migration starts at version 0 (only the last_modified addition is
// pending); otherwise it starts from scratch (-1, meaning "run every
// migration").
func (c *Catalog) AutoMigrate() error {
	version, err := c.userVersion()
	if err != nil {
		return err
	}
	if version == 0 {
		legacyCount := 0
		for _, table := range LegacyTables {
			ok, err := c.hasTable(table)
			if err != nil {
				return err
			}
			if ok {
				legacyCount++
			}
		}
		if legacyCount == len(LegacyTables) {
			return c.Migrate(0)
		}
		return c.Migrate(-1)
	}
	if version != LatestVersion {
		return c.Migrate(version)
	}
	return nil
}

// Migrate runs every migration after fromVersion, in order, then
// stamps user_version and application_id to LatestVersion/ApplicationID.
// Before running anything, if fromVersion != -1 and the catalog file
// already exists on disk, it is copied to an "OLD_VERSION_<n>_<name>"
// sibling so an operator can recover the pre-migration state.
func (c *Catalog) Migrate(fromVersion int) error {
	if fromVersion != -1 {
		if err := c.backup(fromVersion); err != nil {
			return err
		}
	}

	for _, batch := range Migrations[fromVersion+1:] {
		for _, stmt := range batch {
			if _, err := c.db.Exec(stmt); err != nil {
				return fmt.Errorf("catalog: migrate from version %d: %w", fromVersion, err)
			}
		}
	}

	if _, err := c.db.Exec(fmt.Sprintf("PRAGMA application_id = %d", ApplicationID)); err != nil {
		return fmt.Errorf("catalog: set application_id: %w", err)
	}
	if _, err := c.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", LatestVersion)); err != nil {
		return fmt.Errorf("catalog: set user_version: %w", err)
	}
	return nil
}

func (c *Catalog) backup(fromVersion int) error {
	if c.path == ":memory:" || c.path == "" {
		return nil
	}
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("catalog: stat %s: %w", c.path, err)
	}

	dst := filepath.Join(filepath.Dir(c.path),
		fmt.Sprintf("OLD_VERSION_%d_%s", fromVersion, filepath.Base(c.path)))
	return copyFile(c.path, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("catalog: open %s for backup: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("catalog: create backup %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("catalog: copy backup %s -> %s: %w", src, dst, err)
	}
	return nil
}
