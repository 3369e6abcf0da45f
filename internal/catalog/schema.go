package catalog

// Schema for the station's relational catalog.
//
// Our data model is extremely simple:
//   - The catalog contains audio file rows.
//   - Each audio file is uniquely identified by a fingerprint.
//   - Each audio file has many ID3 tags, partitioned into snapshots by
//     a timestamp.
//
// Grounded on chirp/library/schema.py: two migrations, tracked via
// the sqlite user_version pragma, plus an application-id marker.

const createAudioFilesTable = `
CREATE TABLE audio_files (
  volume INTEGER,
  import_timestamp INTEGER,
  fingerprint TEXT UNIQUE,
  album_id INTEGER,
  sampling_rate_hz INTEGER,
  bit_rate_kbps INTEGER,
  channels INTEGER,
  frame_count INTEGER,
  frame_size INTEGER,
  duration_ms INTEGER
)
`

const createAudioFilesIndex = `
CREATE UNIQUE INDEX audio_files_index_fingerprint
ON audio_files ( fingerprint )
`

const createID3TagsTable = `
CREATE TABLE id3_tags (
  fingerprint TEXT,
  timestamp INTEGER,
  frame_id TEXT,
  value TEXT,
  serialized_repr TEXT
)
`

const createID3TagsIndex = `
CREATE INDEX id3_tags_index_fingerprint
ON id3_tags ( fingerprint, timestamp DESC )
`

const enableForeignKeys = `PRAGMA foreign_keys = ON`

const createLastModified = `
CREATE TABLE last_modified (
  fingerprint TEXT UNIQUE,
  modified_timestamp INTEGER,
  FOREIGN KEY(fingerprint) REFERENCES audio_files(fingerprint)
)
`

const createLastModifiedIndex = `
CREATE UNIQUE INDEX last_modified_index_fingerprint
ON last_modified ( fingerprint )
`

const populateLastModified = `
INSERT INTO last_modified (fingerprint, modified_timestamp)
  SELECT fingerprint, import_timestamp FROM audio_files
`

// Migrations is the ordered list of batches to run when bringing a
// catalog file up to LatestVersion. Each element is a list of
// statements executed in order; the index of an element in Migrations
// is the schema version it produces, recorded in the file's
// user_version pragma.
var Migrations = [][]string{
	{ // version 0: original tables
		createAudioFilesTable,
		createAudioFilesIndex,
		createID3TagsTable,
		createID3TagsIndex,
	},
	{ // version 1: adds last_modified
		enableForeignKeys,
		createLastModified,
		createLastModifiedIndex,
		populateLastModified,
	},
}

// LatestVersion is the newest schema version Migrations produces.
var LatestVersion = len(Migrations) - 1

// LegacyTables are the unversioned table names to probe for when a
// catalog file reports user_version 0: if both exist, the file
// predates version tracking and already holds the version-0 schema
// (migration starts at 1); otherwise it is a fresh file (migration
// starts at 0).
var LegacyTables = []string{"id3_tags", "audio_files"}

// ApplicationID is stamped into the sqlite application_id pragma to
// mark catalog files, mirroring schema.py's
// int.from_bytes(b"CHRP").
const ApplicationID = int64('C')<<24 | int64('H')<<16 | int64('R')<<8 | int64('P')

// TagsSeparator delimits concatenated tag reprs/values in the
// less-queries read path. Chosen to be unlikely to occur in tag data.
const TagsSeparator = "^&*"
