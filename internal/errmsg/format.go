// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Dropbox scanning
	OpDropboxScan  Op = "scan dropbox"
	OpDropboxGroup Op = "group dropbox files into albums"

	// Tag reading/writing
	OpTagsRead  Op = "read ID3 tags"
	OpTagsWrite Op = "write ID3 tags"
	OpTagsStrip Op = "strip ID3 tags"

	// MPEG frame analysis
	OpFrameAnalyze Op = "analyze MPEG frames"
	OpFingerprint  Op = "fingerprint file"

	// Artist whitelist
	OpWhitelistLoad        Op = "load artist whitelist"
	OpWhitelistStandardize Op = "standardize artist name"

	// Album standardization
	OpAlbumStandardize Op = "standardize album"
	OpAlbumGroup       Op = "group files into album"

	// Import
	OpImportFile        Op = "import file"
	OpImportStage       Op = "stage file for import"
	OpImportCommit      Op = "commit import transaction"
	OpImportScan        Op = "scan dropbox for import"
	OpImportStandardize Op = "standardize tags for import"

	// Catalog
	OpCatalogOpen      Op = "open catalog"
	OpCatalogMigrate   Op = "migrate catalog schema"
	OpCatalogQuery     Op = "query catalog"
	OpCatalogAdd       Op = "add file to catalog"
	OpCatalogUpdate    Op = "update catalog tag"
	OpCatalogModifyTag Op = "modify catalog tag"

	// NML export
	OpNMLExport Op = "export NML collection"
	OpNMLParse  Op = "parse existing NML collection"

	// Configuration
	OpConfigLoad Op = "load configuration"

	// Periodic import driver
	OpPeriodicScan   Op = "scan dropbox for periodic import"
	OpPeriodicImport Op = "run periodic import"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
