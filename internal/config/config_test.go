package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde with slash",
			input:    "~/",
			expected: filepath.Join(home, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}
}

func withTempWorkdir(t *testing.T) {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(originalWd) })
}

func TestLoad_EmptyConfigAppliesDefaults(t *testing.T) {
	withTempWorkdir(t)

	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Volume != defaultVolume {
		t.Errorf("Volume = %d, want %d", cfg.Volume, defaultVolume)
	}
	if cfg.MaxBatchBytes != defaultMaxBatchBytes {
		t.Errorf("MaxBatchBytes = %d, want %d", cfg.MaxBatchBytes, defaultMaxBatchBytes)
	}
}

func TestLoad_BasicConfig(t *testing.T) {
	withTempWorkdir(t)

	configContent := `
dropbox_path = "/mnt/dropbox"
catalog_path = "~/chirparchive/catalog.db"
nml_path = "/mnt/traktor/collection.nml"
volume = 3
max_batch_bytes = 1048576
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DropboxPath != "/mnt/dropbox" {
		t.Errorf("DropboxPath = %q, want %q", cfg.DropboxPath, "/mnt/dropbox")
	}
	home, _ := os.UserHomeDir()
	wantCatalog := filepath.Join(home, "chirparchive", "catalog.db")
	if cfg.CatalogPath != wantCatalog {
		t.Errorf("CatalogPath = %q, want %q", cfg.CatalogPath, wantCatalog)
	}
	if cfg.NMLPath != "/mnt/traktor/collection.nml" {
		t.Errorf("NMLPath = %q, want %q", cfg.NMLPath, "/mnt/traktor/collection.nml")
	}
	if cfg.Volume != 3 {
		t.Errorf("Volume = %d, want 3", cfg.Volume)
	}
	if cfg.MaxBatchBytes != 1048576 {
		t.Errorf("MaxBatchBytes = %d, want 1048576", cfg.MaxBatchBytes)
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	withTempWorkdir(t)

	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestLoad_ZeroOrNegativeOverridesFallBackToDefaults(t *testing.T) {
	withTempWorkdir(t)

	configContent := `
volume = 0
max_batch_bytes = -1
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Volume != defaultVolume {
		t.Errorf("Volume = %d, want %d", cfg.Volume, defaultVolume)
	}
	if cfg.MaxBatchBytes != defaultMaxBatchBytes {
		t.Errorf("MaxBatchBytes = %d, want %d", cfg.MaxBatchBytes, defaultMaxBatchBytes)
	}
}

func TestLoad_TildeExpansionAcrossAllPathFields(t *testing.T) {
	withTempWorkdir(t)

	configContent := `
prefix = "~/archive"
dropbox_path = "~/dropbox"
temp_prefix = "~/staging"
catalog_path = "~/catalog.db"
artist_whitelist = "~/whitelist.txt"
nml_path = "~/collection.nml"
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	for _, tc := range []struct {
		name string
		got  string
		want string
	}{
		{"Prefix", cfg.Prefix, filepath.Join(home, "archive")},
		{"DropboxPath", cfg.DropboxPath, filepath.Join(home, "dropbox")},
		{"TempPrefix", cfg.TempPrefix, filepath.Join(home, "staging")},
		{"CatalogPath", cfg.CatalogPath, filepath.Join(home, "catalog.db")},
		{"ArtistWhitelist", cfg.ArtistWhitelist, filepath.Join(home, "whitelist.txt")},
		{"NMLPath", cfg.NMLPath, filepath.Join(home, "collection.nml")},
	} {
		if tc.got != tc.want {
			t.Errorf("%s = %q, want %q", tc.name, tc.got, tc.want)
		}
	}
}
