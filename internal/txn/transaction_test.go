package txn

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/tags"
)

// a128Stereo44100 is a self-contained MPEG-1 Layer III frame header:
// 128kbps, 44100Hz, stereo, unpadded, protected (CRC present).
var a128Stereo44100 = []byte{0xff, 0xfa, 0x90, 0x00}

const frameSize128kbps44100hz = 417

func buildFrames(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		f := make([]byte, frameSize128kbps44100hz)
		copy(f, a128Stereo44100)
		buf.Write(f)
	}
	return buf.Bytes()
}

func newCandidateFile(t *testing.T, dir, name, albumName, artistName, track string) *album.AudioFile {
	t.Helper()
	path := filepath.Join(dir, name+".mp3")
	require.NoError(t, os.WriteFile(path, buildFrames(150), 0o644))

	set := tags.NewSet()
	set.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: name})
	set.Put(tags.Frame{ID: "TPE1", Kind: tags.KindText, Value: artistName})
	set.Put(tags.Frame{ID: "TALB", Kind: tags.KindText, Value: albumName})
	set.Put(tags.Frame{ID: "TRCK", Kind: tags.KindNumericText, Value: track})
	require.NoError(t, tags.SaveFinal(path, set))

	af, err := album.Scan(path)
	require.NoError(t, err)
	return af
}

func buildAlbum(t *testing.T, dir, albumName, artistName string, wl *artist.Whitelist, tracks ...string) *album.Album {
	t.Helper()
	var files []*album.AudioFile
	for i, name := range tracks {
		files = append(files, newCandidateFile(t, dir, name, albumName, artistName, itoa(i+1)))
	}
	alb, err := album.NewAlbum(files)
	require.NoError(t, err)
	require.NoError(t, alb.Standardize(wl, ""))
	return alb
}

func itoa(n int) string {
	return string(rune('0' + n))
}

func TestAddAlbumThenCommit(t *testing.T) {
	srcDir := t.TempDir()
	tmpDir := t.TempDir()
	archiveDir := t.TempDir()

	wl, err := artist.NewWhitelist([]string{"The Fall", "Wire"})
	require.NoError(t, err)

	albOne := buildAlbum(t, srcDir, "Grotesque", "The Fall", wl, "Pat-Trip Dispenser", "The Container Drivers")
	albTwo := buildAlbum(t, srcDir, "Pink Flag", "Wire", wl, "Reuters", "Field Day for the Sundays")

	cat, err := catalog.Open(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	tx := New(cat, 1, 1230879845, tmpDir, false, wl, nil)
	require.NoError(t, tx.AddAlbum(albOne))
	require.NoError(t, tx.AddAlbum(albTwo))
	require.Equal(t, 4, tx.NumTracks())
	require.Equal(t, 2, tx.NumAlbums())
	require.Greater(t, tx.TotalSizeBytes(), int64(0))
	require.Contains(t, tx.Summary(), "2 albums")
	require.Contains(t, tx.Summary(), "4 tracks")

	require.NoError(t, tx.Commit(archiveDir))

	ufidPrefix := tags.UFIDPrefix(1, 1230879845)
	_, err = os.Stat(filepath.Join(tx.scratchDir(), ufidPrefix))
	require.True(t, os.IsNotExist(err), "staged subtree should no longer exist under the temp prefix")

	realDir := filepath.Join(archiveDir, ufidPrefix)
	entries, err := os.ReadDir(realDir)
	require.NoError(t, err)
	var mp3Count int
	var sawManifest bool
	for _, e := range entries {
		if e.Name() == "_source_files" {
			sawManifest = true
			continue
		}
		mp3Count++
	}
	require.True(t, sawManifest, "expected a _source_files manifest in the committed directory")
	require.Equal(t, 4, mp3Count)

	manifest, err := os.ReadFile(filepath.Join(realDir, "_source_files"))
	require.NoError(t, err)
	require.Len(t, bytes.Split(bytes.TrimRight(manifest, "\n"), []byte("\n")), 4)

	files, err := cat.GetByImport(1, 1230879845)
	require.NoError(t, err)
	require.Len(t, files, 4)
}

func TestDryRunTransactionWritesNothing(t *testing.T) {
	srcDir := t.TempDir()
	tmpDir := t.TempDir()

	wl, err := artist.NewWhitelist([]string{"The Fall"})
	require.NoError(t, err)
	alb := buildAlbum(t, srcDir, "Grotesque", "The Fall", wl, "Pat-Trip Dispenser")

	cat, err := catalog.Open(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	tx := New(cat, 1, 1000, tmpDir, true, wl, nil)
	require.NoError(t, tx.AddAlbum(alb))
	require.Equal(t, 1, tx.NumTracks())

	require.NoError(t, tx.Commit(t.TempDir()))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Empty(t, entries, "dry run must not stage anything on disk")

	files, err := cat.GetByImport(1, 1000)
	require.NoError(t, err)
	require.Empty(t, files, "dry run must not touch the catalog")
}

func TestConcurrentTransactionsDoNotShareStagingPath(t *testing.T) {
	srcDir := t.TempDir()
	tmpDir := t.TempDir()

	wl, err := artist.NewWhitelist([]string{"The Fall"})
	require.NoError(t, err)
	albOne := buildAlbum(t, srcDir, "Grotesque", "The Fall", wl, "Pat-Trip Dispenser")
	albTwo := buildAlbum(t, srcDir, "Grotesque2", "The Fall", wl, "Container Drivers")

	cat, err := catalog.Open(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	txOne := New(cat, 1, 1230879845, tmpDir, false, wl, nil)
	txTwo := New(cat, 1, 1230879845, tmpDir, false, wl, nil)
	require.NotEqual(t, txOne.scratchDir(), txTwo.scratchDir())

	require.NoError(t, txOne.AddAlbum(albOne))
	require.NoError(t, txTwo.AddAlbum(albTwo))

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "each transaction should stage under its own scratch subdirectory")
}

func TestAddAlbumRejectsBlacklistedFrame(t *testing.T) {
	srcDir := t.TempDir()
	wl, err := artist.NewWhitelist([]string{"The Fall"})
	require.NoError(t, err)

	path := filepath.Join(srcDir, "track.mp3")
	require.NoError(t, os.WriteFile(path, buildFrames(150), 0o644))
	set := tags.NewSet()
	set.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: "Track"})
	set.Put(tags.Frame{ID: "TPE1", Kind: tags.KindText, Value: "The Fall"})
	set.Put(tags.Frame{ID: "TALB", Kind: tags.KindText, Value: "Album"})
	set.Put(tags.Frame{ID: "TRCK", Kind: tags.KindNumericText, Value: "1"})
	set.Put(tags.Frame{ID: "COMM", Kind: tags.KindText, Value: "banned"})
	require.NoError(t, tags.SaveFinal(path, set))

	af, err := album.Scan(path)
	require.NoError(t, err)
	alb, err := album.NewAlbum([]*album.AudioFile{af})
	require.NoError(t, err)
	require.NoError(t, alb.Standardize(wl, ""))

	cat, err := catalog.Open(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })

	tx := New(cat, 1, 1000, t.TempDir(), false, wl, map[string]bool{"COMM": true})
	require.Error(t, tx.AddAlbum(alb))
}
