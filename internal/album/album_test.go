package album

import (
	"testing"

	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/tags"
)

func newTestFile(fp, talb, tit2, tpe1, trck string) *AudioFile {
	set := tags.NewSet()
	set.Put(tags.Frame{ID: "TALB", Kind: tags.KindText, Value: talb})
	set.Put(tags.Frame{ID: "TIT2", Kind: tags.KindText, Value: tit2})
	set.Put(tags.Frame{ID: "TPE1", Kind: tags.KindText, Value: tpe1})
	set.Put(tags.Frame{ID: "TRCK", Kind: tags.KindNumericText, Value: trck})
	return &AudioFile{Fingerprint: fp, Tags: set}
}

// TestStandardizeScenarioS4 implements spec.md §8 Scenario S4.
func TestStandardizeScenarioS4(t *testing.T) {
	wl, err := artist.NewWhitelist([]string{"The Fall", "T-Pain"})
	if err != nil {
		t.Fatalf("NewWhitelist: %v", err)
	}

	files := []*AudioFile{
		newTestFile("aaaa000000000000000000000000000000000a", "Live", "Track One", "Fall, The", "1"),
		newTestFile("bbbb000000000000000000000000000000000b", "Live", "Track Two", "Fall, The", "2"),
		newTestFile("cccc000000000000000000000000000000000c", "Live", "Track Three", "Fall, The", "3"),
		newTestFile("dddd000000000000000000000000000000000d", "Live", "Track Four", "The Fall ft. T-Pain", "4"),
	}

	a, err := NewAlbum(files)
	if err != nil {
		t.Fatalf("NewAlbum: %v", err)
	}
	if err := a.Standardize(wl, ""); err != nil {
		t.Fatalf("Standardize: %v", err)
	}

	for i, f := range a.Files {
		if got := f.Tags.Text("TPE1"); got != "The Fall" {
			t.Errorf("file %d TPE1 = %q, want %q", i, got, "The Fall")
		}
	}
	if got := a.Files[3].Tags.Text("TIT2"); got != "Track Four (w/ T-Pain)" {
		t.Errorf("guest file TIT2 = %q, want %q", got, "Track Four (w/ T-Pain)")
	}
	if a.Files[0].Tags.Text("TIT2") != "Track One" {
		t.Errorf("non-guest TIT2 unexpectedly changed: %q", a.Files[0].Tags.Text("TIT2"))
	}
}

func TestIsCompilation(t *testing.T) {
	files := []*AudioFile{
		newTestFile("a000000000000000000000000000000000000a", "Various", "T1", "Artist A", "1"),
		newTestFile("b000000000000000000000000000000000000b", "Various", "T2", "Artist B", "2"),
		newTestFile("c000000000000000000000000000000000000c", "Various", "T3", "Artist C", "3"),
	}
	a, err := NewAlbum(files)
	if err != nil {
		t.Fatalf("NewAlbum: %v", err)
	}
	if !a.IsCompilation() {
		t.Error("three distinct single-track artists should be a compilation")
	}
}

func TestResolveTALBCaseMajority(t *testing.T) {
	files := []*AudioFile{
		newTestFile("a000000000000000000000000000000000000a", "Closer", "T1", "Joy Division", "1"),
		newTestFile("b000000000000000000000000000000000000b", "closer", "T2", "Joy Division", "2"),
		newTestFile("c000000000000000000000000000000000000c", "Closer", "T3", "Joy Division", "3"),
	}
	talb, err := resolveTALB(files, "")
	if err != nil {
		t.Fatalf("resolveTALB: %v", err)
	}
	if talb != "Closer" {
		t.Errorf("resolveTALB = %q, want %q (majority exact-case variant)", talb, "Closer")
	}
}

func TestGroupFilesMissingTALB(t *testing.T) {
	set := tags.NewSet()
	f := &AudioFile{Fingerprint: "a000000000000000000000000000000000000a", Tags: set}
	if _, err := GroupFiles([]*AudioFile{f}); err == nil {
		t.Error("expected an error for a file with no TALB tag")
	}
}
