//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpDropboxScan,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpDropboxScan,
			err:      errors.New("permission denied"),
			expected: "Failed to scan dropbox: permission denied",
		},
		{
			name:     "catalog operation",
			op:       OpCatalogOpen,
			err:      errors.New("no such file"),
			expected: "Failed to open catalog: no such file",
		},
		{
			name:     "import operation",
			op:       OpImportCommit,
			err:      errors.New("disk full"),
			expected: "Failed to commit import transaction: disk full",
		},
		{
			name:     "nml export operation",
			op:       OpNMLExport,
			err:      errors.New("malformed document"),
			expected: "Failed to export NML collection: malformed document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpImportFile,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpImportFile,
			context:  "song.mp3",
			err:      errors.New("missing TPE1"),
			expected: "Failed to import file 'song.mp3': missing TPE1",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpImportFile,
			context:  "",
			err:      errors.New("missing TPE1"),
			expected: "Failed to import file: missing TPE1",
		},
		{
			name:     "catalog add with fingerprint context",
			op:       OpCatalogAdd,
			context:  "abc123",
			err:      errors.New("fingerprint already exists"),
			expected: "Failed to add file to catalog 'abc123': fingerprint already exists",
		},
		{
			name:     "whitelist standardize with artist name context",
			op:       OpWhitelistStandardize,
			context:  "Sufjan Stevens",
			err:      errors.New("no such artist in whitelist"),
			expected: "Failed to standardize artist name 'Sufjan Stevens': no such artist in whitelist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpDropboxScan, OpDropboxGroup,
		OpTagsRead, OpTagsWrite, OpTagsStrip,
		OpFrameAnalyze, OpFingerprint,
		OpWhitelistLoad, OpWhitelistStandardize,
		OpAlbumStandardize, OpAlbumGroup,
		OpImportFile, OpImportStage, OpImportCommit, OpImportScan, OpImportStandardize,
		OpCatalogOpen, OpCatalogMigrate, OpCatalogQuery, OpCatalogAdd, OpCatalogUpdate, OpCatalogModifyTag,
		OpNMLExport, OpNMLParse,
		OpConfigLoad,
		OpPeriodicScan, OpPeriodicImport,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			result := Format(op, testErr)
			if result == "" {
				t.Error("Format should return non-empty string for non-nil error")
			}

			expected := "Failed to " + string(op) + ": test error"
			if result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}
