package nml

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chirpradio/chirparchive/internal/album"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/frame"
	"github.com/chirpradio/chirparchive/internal/tags"
	"github.com/chirpradio/chirparchive/internal/timeutil"
)

func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Open(":memory:", true)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleFile(fingerprint, title, artist, albumName, track string, albumID uint64) *album.AudioFile {
	rate := 44100
	bitRate := 128.0
	channels := frame.ChannelStereo
	set := tags.NewSet()
	set.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: title})
	set.Put(tags.Frame{ID: "TPE1", Kind: tags.KindText, Value: artist})
	set.Put(tags.Frame{ID: "TALB", Kind: tags.KindText, Value: albumName})
	set.Put(tags.Frame{ID: "TRCK", Kind: tags.KindNumericText, Value: track})
	return &album.AudioFile{
		Fingerprint: fingerprint,
		AlbumID:     albumID,
		HasAlbumID:  true,
		FrameCount:  150,
		FrameSize:   417 * 150,
		DurationMs:  150 * 1000 * 1152 / 44100,
		Header: &frame.Header{
			SamplingRateHz: &rate,
			BitRateKbps:    &bitRate,
			Channels:       &channels,
		},
		Tags: set,
	}
}

func addFile(t *testing.T, c *catalog.Catalog, volume int, ts int64, af *album.AudioFile) {
	t.Helper()
	txn, err := c.BeginAdd(volume, ts)
	require.NoError(t, err)
	require.NoError(t, txn.Add(af))
	require.NoError(t, txn.Commit())
}

func TestExportFromScratch(t *testing.T) {
	c := openTestCatalog(t)
	addFile(t, c, 1, 1230879845, sampleFile("fp-one", "Pat-Trip Dispenser", "The Fall", "Grotesque", "1/2", 42))
	addFile(t, c, 1, 1230879845, sampleFile("fp-two", "The Container Drivers", "The Fall", "Grotesque", "2/2", 42))

	path := filepath.Join(t.TempDir(), "collection.nml")
	require.NoError(t, Export(path, c, "SERATO_USERDATA", "/library"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.Equal(t, 2, doc.Collection.Entries)
	require.Len(t, doc.Collection.Entry, 2)

	uuid, ok := doc.chirpUUID()
	require.True(t, ok)
	require.NotEmpty(t, uuid)

	var artists []string
	for _, e := range doc.Collection.Entry {
		artists = append(artists, e.Artist)
	}
	require.Equal(t, []string{"The Fall", "The Fall"}, artists)
}

func TestExportIncrementalAppendsNewFiles(t *testing.T) {
	c := openTestCatalog(t)
	addFile(t, c, 1, 1000, sampleFile("fp-one", "Pat-Trip Dispenser", "The Fall", "Grotesque", "1/1", 42))

	path := filepath.Join(t.TempDir(), "collection.nml")
	require.NoError(t, Export(path, c, "VOL", "/library"))

	addFile(t, c, 1, timeutil.Now()+3600, sampleFile("fp-two", "Reuters", "Wire", "Pink Flag", "1/1", 99))

	require.NoError(t, Export(path, c, "VOL", "/library"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.Equal(t, 2, doc.Collection.Entries)
	require.Len(t, doc.Collection.Entry, 2)
}

func TestExportIncrementalModifiesExistingEntry(t *testing.T) {
	c := openTestCatalog(t)
	af := sampleFile("fp-one", "Pat-Trip Dispenser", "The Fall", "Grotesque", "1/1", 42)
	addFile(t, c, 1, 1000, af)

	path := filepath.Join(t.TempDir(), "collection.nml")
	require.NoError(t, Export(path, c, "VOL", "/library"))

	af.Tags.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: "Renamed Title"})
	require.NoError(t, c.Update(af, timeutil.Now()+3600))

	require.NoError(t, Export(path, c, "VOL", "/library"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.Equal(t, 1, doc.Collection.Entries)
	require.Equal(t, "Renamed Title", doc.Collection.Entry[0].Title)
}

func TestExportFallsBackToFromScratchOnMalformedFile(t *testing.T) {
	c := openTestCatalog(t)
	addFile(t, c, 1, 1000, sampleFile("fp-one", "Pat-Trip Dispenser", "The Fall", "Grotesque", "1/1", 42))

	path := filepath.Join(t.TempDir(), "collection.nml")
	require.NoError(t, os.WriteFile(path, []byte("not even xml"), 0o644))

	require.NoError(t, Export(path, c, "VOL", "/library"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc Document
	require.NoError(t, xml.Unmarshal(raw, &doc))
	require.Equal(t, 1, doc.Collection.Entries)
}

func TestSimplifyStripsDiacriticsAndSlashedO(t *testing.T) {
	require.Equal(t, "Mot0rhead", simplify("Mot0rhead"))
	require.Equal(t, "Bjork", simplify("Björk"))
	require.Equal(t, "Olafur", simplify("Ólafur"))
	require.Equal(t, "oresund", simplify("øresund"))
	require.Equal(t, "Orn", simplify("Ørn"))
}

func TestTraktorPathQuote(t *testing.T) {
	require.Equal(t, "/:vol01/:20090102-030405", traktorPathQuote("/vol01/20090102-030405"))
}
