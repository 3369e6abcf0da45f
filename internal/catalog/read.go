package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/chirpradio/chirparchive/internal/album"
)

const selectAudioFilesColumns = `volume, import_timestamp, fingerprint, album_id,
	sampling_rate_hz, bit_rate_kbps, channels, frame_count, frame_size, duration_ms`

func scanRow(rows *sql.Rows) (row, error) {
	var r row
	err := rows.Scan(&r.Volume, &r.ImportTimestamp, &r.Fingerprint, &r.AlbumID,
		&r.SamplingRateHz, &r.BitRateKbps, &r.Channels, &r.FrameCount, &r.FrameSize, &r.DurationMs)
	return r, err
}

// loadTags populates af.Tags with the tag snapshot of greatest
// timestamp at or before cutoff (no cutoff if cutoff == nil), reading
// one row per frame. Grounded on database.py's _get_tags.
func (c *Catalog) loadTags(af *album.AudioFile, cutoff *int64) error {
	query := `SELECT timestamp, frame_id, value, serialized_repr FROM id3_tags WHERE fingerprint = ?`
	args := []any{af.Fingerprint}
	if cutoff != nil {
		query += " AND timestamp <= ?"
		args = append(args, *cutoff)
	}
	query += " ORDER BY timestamp DESC"

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("catalog: load tags for %s: %w", af.Fingerprint, err)
	}
	defer rows.Close()

	var maxTimestamp *int64
	for rows.Next() {
		var ts int64
		var frameID, value, repr string
		if err := rows.Scan(&ts, &frameID, &value, &repr); err != nil {
			return fmt.Errorf("catalog: scan tag row: %w", err)
		}
		if maxTimestamp == nil {
			maxTimestamp = &ts
		} else if *maxTimestamp != ts {
			break
		}
		f, err := deserializeFrame(frameID, value, repr)
		if err != nil {
			return err
		}
		af.Tags.Put(f)
	}
	return rows.Err()
}

func (c *Catalog) audioFilesFromQuery(query string, args ...any) ([]*album.AudioFile, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query audio files: %w", err)
	}
	defer rows.Close()

	var out []*album.AudioFile
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan audio file row: %w", err)
		}
		out = append(out, fromRow(r))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, af := range out {
		if err := c.loadTags(af, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// GetAll returns every audio file in the catalog, ordered by
// (import_timestamp DESC, album_id), each with its latest tag
// snapshot loaded.
func (c *Catalog) GetAll() ([]*album.AudioFile, error) {
	query := "SELECT " + selectAudioFilesColumns + " FROM audio_files ORDER BY import_timestamp DESC, album_id"
	return c.audioFilesFromQuery(query)
}

// GetSince returns every audio file whose last_modified timestamp is
// greater than sinceTimestamp, in the same order as GetAll.
func (c *Catalog) GetSince(sinceTimestamp int64) ([]*album.AudioFile, error) {
	query := "SELECT " + selectAudioFilesColumns + ` FROM audio_files NATURAL JOIN last_modified
		WHERE modified_timestamp > ? ORDER BY import_timestamp DESC, album_id`
	return c.audioFilesFromQuery(query, sinceTimestamp)
}

// GetByImport returns every audio file committed as part of the given
// (volume, importTimestamp) import, ordered by album id.
func (c *Catalog) GetByImport(volume int, importTimestamp int64) ([]*album.AudioFile, error) {
	query := "SELECT " + selectAudioFilesColumns + " FROM audio_files WHERE volume = ? AND import_timestamp = ? ORDER BY album_id"
	return c.audioFilesFromQuery(query, volume, importTimestamp)
}

// GetByFingerprint returns the audio file with the given fingerprint,
// or nil if none exists.
func (c *Catalog) GetByFingerprint(fingerprint string) (*album.AudioFile, error) {
	query := "SELECT " + selectAudioFilesColumns + " FROM audio_files WHERE fingerprint = ?"
	files, err := c.audioFilesFromQuery(query, fingerprint)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}

// Import identifies one commit: a (volume, timestamp) pair.
type Import struct {
	Volume          int
	ImportTimestamp int64
}

// GetAllImports returns every distinct (volume, import_timestamp)
// pair in the catalog, in ascending timestamp order.
func (c *Catalog) GetAllImports() ([]Import, error) {
	rows, err := c.db.Query("SELECT DISTINCT volume, import_timestamp FROM audio_files ORDER BY import_timestamp")
	if err != nil {
		return nil, fmt.Errorf("catalog: list imports: %w", err)
	}
	defer rows.Close()

	var out []Import
	for rows.Next() {
		var imp Import
		if err := rows.Scan(&imp.Volume, &imp.ImportTimestamp); err != nil {
			return nil, fmt.Errorf("catalog: scan import row: %w", err)
		}
		out = append(out, imp)
	}
	return out, rows.Err()
}

const concatTagsCTE = `WITH concat_tags AS (
	SELECT fingerprint, timestamp,
		GROUP_CONCAT(frame_id, '` + TagsSeparator + `') AS concat_frame_ids,
		GROUP_CONCAT(value, '` + TagsSeparator + `') AS concat_values,
		GROUP_CONCAT(serialized_repr, '` + TagsSeparator + `') AS concat_reprs
	FROM id3_tags
	GROUP BY fingerprint, timestamp
)`

func (c *Catalog) audioFilesWithTagsFromQuery(query string, args ...any) ([]*album.AudioFile, error) {
	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: query audio files: %w", err)
	}
	defer rows.Close()

	var out []*album.AudioFile
	for rows.Next() {
		var r row
		var concatFrameIDs, concatValues, concatReprs string
		err := rows.Scan(&r.Volume, &r.ImportTimestamp, &r.Fingerprint, &r.AlbumID,
			&r.SamplingRateHz, &r.BitRateKbps, &r.Channels, &r.FrameCount, &r.FrameSize, &r.DurationMs,
			&concatFrameIDs, &concatValues, &concatReprs)
		if err != nil {
			return nil, fmt.Errorf("catalog: scan audio file with tags row: %w", err)
		}

		frameIDs := strings.Split(concatFrameIDs, TagsSeparator)
		values := strings.Split(concatValues, TagsSeparator)
		reprs := strings.Split(concatReprs, TagsSeparator)
		if len(frameIDs) != len(values) || len(frameIDs) != len(reprs) {
			return nil, fmt.Errorf("catalog: a tag value contained the %q separator for fingerprint %s", TagsSeparator, r.Fingerprint)
		}

		af := fromRow(r)
		for i := range frameIDs {
			f, err := deserializeFrame(frameIDs[i], values[i], reprs[i])
			if err != nil {
				return nil, err
			}
			af.Tags.Put(f)
		}
		out = append(out, af)
	}
	return out, rows.Err()
}

const concatTagsJoin = `(
	SELECT fingerprint, concat_frame_ids, concat_values, concat_reprs
	FROM concat_tags AS a
	WHERE a.timestamp = (SELECT MAX(timestamp) FROM concat_tags AS b WHERE a.fingerprint = b.fingerprint)
)`

// GetAllLessQueries behaves like GetAll but loads every file's tag
// snapshot with a single joined query instead of one query per file.
// It returns an error if any tag value or frame id contains
// TagsSeparator, in which case the caller should fall back to GetAll.
func (c *Catalog) GetAllLessQueries() ([]*album.AudioFile, error) {
	query := concatTagsCTE + `
		SELECT ` + selectAudioFilesColumns + `, concat_frame_ids, concat_values, concat_reprs
		FROM audio_files NATURAL JOIN ` + concatTagsJoin + `
		ORDER BY import_timestamp DESC, album_id`
	return c.audioFilesWithTagsFromQuery(query)
}

// GetSinceLessQueries behaves like GetSince but loads tag snapshots
// with a single joined query, as GetAllLessQueries does.
func (c *Catalog) GetSinceLessQueries(sinceTimestamp int64) ([]*album.AudioFile, error) {
	query := concatTagsCTE + `
		SELECT ` + selectAudioFilesColumns + `, concat_frame_ids, concat_values, concat_reprs
		FROM audio_files NATURAL JOIN last_modified NATURAL JOIN ` + concatTagsJoin + `
		WHERE modified_timestamp > ?
		ORDER BY import_timestamp DESC, album_id`
	return c.audioFilesWithTagsFromQuery(query, sinceTimestamp)
}
