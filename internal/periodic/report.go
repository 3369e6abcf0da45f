package periodic

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/chirpradio/chirparchive/internal/album"
)

// WriteReport writes a human-readable summary of a scan, one block
// per album followed by a totals line, in the shape of the original
// import_albums's print statements.
func WriteReport(w io.Writer, report *Report) {
	for i, r := range report.Albums {
		fmt.Fprintf(w, "#%d %q\n", i+1, r.Album.Title())
		if tags := r.Album.Tags(); len(tags) > 0 {
			fmt.Fprintf(w, "(%s)\n", strings.Join(tags, ", "))
		}
		if r.Album.IsCompilation() {
			fmt.Fprintln(w, "Compilation")
		} else {
			fmt.Fprintln(w, r.Album.ArtistName())
		}
		fmt.Fprintf(w, "%d tracks / %s / %s\n",
			len(r.Album.Files), humanizeDuration(r.DurationMs), humanize.Bytes(totalBytes(r.Album)))
		fmt.Fprintf(w, "ID=%015x\n", r.Album.AlbumID)

		if r.OK() {
			fmt.Fprintln(w, "OK!")
		} else {
			for _, e := range r.Errors {
				fmt.Fprintf(w, "***** ERROR: %s\n", e)
			}
		}
		fmt.Fprintln(w)
	}

	for _, sf := range report.SkippedFiles {
		fmt.Fprintf(w, "***** SKIPPED: %s (%s)\n", sf.Path, sf.Reason)
	}

	fmt.Fprintln(w, "----------------------------------------")
	fmt.Fprintf(w, "Found %d albums\n", len(report.Albums))
	if report.Clean() {
		fmt.Fprintln(w, "No errors found")
		return
	}
	fmt.Fprintf(w, "Saw %d errors\n", report.ErrorCount+len(report.SkippedFiles))
}

func totalBytes(a *album.Album) uint64 {
	var total uint64
	for _, af := range a.Files {
		total += uint64(af.FrameSize)
	}
	return total
}

func humanizeDuration(ms int64) string {
	minutes := ms / 60000
	return fmt.Sprintf("%d minutes", minutes)
}
