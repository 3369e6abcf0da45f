// Package config loads the archive's TOML configuration file: where the
// dropbox inbox lives, where the catalog database and NML export live,
// which volume number this machine writes, and the batch-commit size
// limit for periodic imports.
package config

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "chirparchive"

// defaultMaxBatchBytes is 0.95 * 3 GiB, the original importer's
// IMPORT_SIZE_LIMIT: commit a transaction once it's grown past this
// many bytes of payload rather than waiting for the whole dropbox scan
// to finish.
const defaultMaxBatchBytes = int64(0.95 * 3 * 1024 * 1024 * 1024)

// defaultVolume is the volume number a fresh install writes to absent
// any config override.
const defaultVolume = 1

type Config struct {
	Prefix          string `koanf:"prefix"`           // archive root, library volumes live under here
	DropboxPath     string `koanf:"dropbox_path"`     // inbox root scanned for new albums
	TempPrefix      string `koanf:"temp_prefix"`      // staging root for in-flight imports
	CatalogPath     string `koanf:"catalog_path"`     // sqlite catalog file
	ArtistWhitelist string `koanf:"artist_whitelist"` // text file, one canonical artist name per line
	NMLPath         string `koanf:"nml_path"`         // Traktor collection.nml to keep in sync

	Volume        int   `koanf:"volume"`
	MaxBatchBytes int64 `koanf:"max_batch_bytes"`
}

// Load reads config.toml from the usual locations, applying the
// working directory's copy last so it overrides the user-wide one.
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Volume:        defaultVolume,
		MaxBatchBytes: defaultMaxBatchBytes,
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.Prefix = expandPath(cfg.Prefix)
	cfg.DropboxPath = expandPath(cfg.DropboxPath)
	cfg.TempPrefix = expandPath(cfg.TempPrefix)
	cfg.CatalogPath = expandPath(cfg.CatalogPath)
	cfg.ArtistWhitelist = expandPath(cfg.ArtistWhitelist)
	cfg.NMLPath = expandPath(cfg.NMLPath)

	if cfg.Volume <= 0 {
		cfg.Volume = defaultVolume
	}
	if cfg.MaxBatchBytes <= 0 {
		cfg.MaxBatchBytes = defaultMaxBatchBytes
	}

	return cfg, nil
}

func getConfigPaths() []string {
	var paths []string

	if xdgPath, err := xdg.ConfigFile(filepath.Join(appName, "config.toml")); err == nil {
		paths = append(paths, xdgPath)
	}

	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
