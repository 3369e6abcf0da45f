package catalog

import (
	"database/sql"
	"fmt"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/db"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// AddTransaction encapsulates a single catalog commit: every file
// added through it is stamped with the same (volume, importTimestamp)
// pair. Exactly one of Commit or Revert must be called; calling Add
// after either is an error. Grounded on database.py's _AddTransaction.
type AddTransaction struct {
	volume          int
	importTimestamp int64
	tx              *sql.Tx
	done            bool
}

// BeginAdd opens a new AddTransaction for a commit of the given
// (volume, importTimestamp).
func (c *Catalog) BeginAdd(volume int, importTimestamp int64) (*AddTransaction, error) {
	tx, err := c.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("catalog: begin add transaction: %w", err)
	}
	return &AddTransaction{volume: volume, importTimestamp: importTimestamp, tx: tx}, nil
}

// Add inserts af into the transaction: an audio_files row, a
// last_modified row, and one id3_tags row per frame currently on
// af.Tags. af.Volume/af.ImportTimestamp are stamped with the
// transaction's values; if they were already set they must agree.
func (t *AddTransaction) Add(af *album.AudioFile) error {
	if t.done {
		return fmt.Errorf("catalog: Add called on a completed transaction")
	}
	if af.HasVolume && (af.Volume != t.volume || af.ImportTimestamp != t.importTimestamp) {
		return fmt.Errorf("catalog: audio file already stamped with a different (volume, import_timestamp)")
	}
	af.Volume = t.volume
	af.ImportTimestamp = t.importTimestamp
	af.HasVolume = true

	r := toRow(af)
	_, err := t.tx.Exec(`INSERT INTO audio_files VALUES (?,?,?,?,?,?,?,?,?,?)`,
		r.Volume, r.ImportTimestamp, r.Fingerprint, r.AlbumID,
		r.SamplingRateHz, r.BitRateKbps, r.Channels, r.FrameCount, r.FrameSize, r.DurationMs)
	if err != nil {
		return fmt.Errorf("catalog: insert audio_files row for %s: %w", af.Fingerprint, err)
	}

	_, err = t.tx.Exec(`INSERT INTO last_modified VALUES (?,?)`, af.Fingerprint, af.ImportTimestamp)
	if err != nil {
		return fmt.Errorf("catalog: insert last_modified row for %s: %w", af.Fingerprint, err)
	}

	return insertTags(t.tx, af.Fingerprint, af.ImportTimestamp, af.Tags)
}

// insertTags writes one id3_tags row per frame in set, in the set's
// order, each carrying the same fingerprint/timestamp snapshot key.
func insertTags(tx *sql.Tx, fingerprint string, timestamp int64, set *tags.Set) error {
	for _, f := range set.Frames() {
		value, repr, err := serializeFrame(f)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO id3_tags VALUES (?,?,?,?,?)`, fingerprint, timestamp, f.ID, value, repr)
		if err != nil {
			return fmt.Errorf("catalog: insert tag %s for %s: %w", f.ID, fingerprint, err)
		}
	}
	return nil
}

// Commit finalizes the transaction. It may be called at most once,
// and never after Revert.
func (t *AddTransaction) Commit() error {
	if t.done {
		return fmt.Errorf("catalog: Commit called on a completed transaction")
	}
	t.done = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit add transaction: %w", err)
	}
	return nil
}

// Revert rolls the transaction back. It may be called at most once,
// and never after Commit.
func (t *AddTransaction) Revert() error {
	if t.done {
		return fmt.Errorf("catalog: Revert called on a completed transaction")
	}
	t.done = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("catalog: revert add transaction: %w", err)
	}
	return nil
}

// Update appends a new tag-history snapshot for af at the given
// timestamp and advances its last_modified row. It does not touch the
// audio_files row itself: af's measured statistics do not change
// after import, only its tags.
func (c *Catalog) Update(af *album.AudioFile, timestamp int64) error {
	err := db.WithTx(c.db, func(tx *sql.Tx) error {
		if err := insertTags(tx, af.Fingerprint, timestamp, af.Tags); err != nil {
			return err
		}

		_, err := tx.Exec(`UPDATE last_modified SET modified_timestamp = ? WHERE fingerprint = ?`,
			timestamp, af.Fingerprint)
		if err != nil {
			return fmt.Errorf("catalog: update last_modified for %s: %w", af.Fingerprint, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog: update: %w", err)
	}
	return nil
}

// ModifyTag rewrites a single frame's value for fingerprint by
// appending a full new tag-history snapshot at newTimestamp: the
// existing snapshot's frames are carried forward unchanged except
// frameID, which is replaced by newValue. This is the operator-facing
// single-frame write path; the source's in-place column UPDATE had a
// broken SQL template and no reachable caller, so per the design
// note on that fact, every edit here produces a new, independently
// queryable snapshot rather than mutating history in place.
func (c *Catalog) ModifyTag(fingerprint, frameID, newValue string, newTimestamp int64) error {
	af := &album.AudioFile{Fingerprint: fingerprint, Tags: tags.NewSet()}
	if err := c.loadTags(af, nil); err != nil {
		return err
	}
	if af.Tags.Len() == 0 {
		return fmt.Errorf("catalog: no tags found for fingerprint %s", fingerprint)
	}

	existing, ok := af.Tags.Get(frameID)
	if !ok {
		return fmt.Errorf("catalog: fingerprint %s has no %s frame to modify", fingerprint, frameID)
	}
	existing.Value = newValue
	af.Tags.Put(existing)

	return c.Update(af, newTimestamp)
}
