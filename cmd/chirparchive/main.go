// Command chirparchive scans, checks, and imports MP3 dropbox contents
// into the content-addressed archive catalog, and exports the catalog
// to a Traktor NML collection.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chirpradio/chirparchive/internal/artist"
	"github.com/chirpradio/chirparchive/internal/catalog"
	"github.com/chirpradio/chirparchive/internal/config"
	"github.com/chirpradio/chirparchive/internal/dropbox"
	"github.com/chirpradio/chirparchive/internal/errmsg"
	"github.com/chirpradio/chirparchive/internal/nml"
	"github.com/chirpradio/chirparchive/internal/periodic"
)

var logger = log.New(os.Stderr, "", log.LstdFlags)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "check":
		err = runCheck(args)
	case "import":
		err = runImport(args)
	case "periodic-import":
		err = runPeriodicImport(args)
	case "export-nml":
		err = runExportNML(args)
	case "help", "-h", "--help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Fatal(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: chirparchive <command> [flags]")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  check            dry-run scan the dropbox and report problems")
	fmt.Fprintln(os.Stderr, "  import           scan and commit the dropbox into the archive")
	fmt.Fprintln(os.Stderr, "  periodic-import  check, then import only if the check is clean")
	fmt.Fprintln(os.Stderr, "  export-nml       export (or incrementally update) the NML collection")
}

func loadWhitelist(path string) (*artist.Whitelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpWhitelistLoad, path, err))
	}
	defer f.Close()

	names, err := artist.ReadWhitelistFile(f)
	if err != nil {
		return nil, fmt.Errorf("%s", errmsg.FormatWith(errmsg.OpWhitelistLoad, path, err))
	}

	return artist.NewWhitelist(names)
}

func openComponents(cfg *config.Config) (*dropbox.Scanner, *catalog.Catalog, *artist.Whitelist, error) {
	inbox, err := dropbox.New(cfg.DropboxPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s", errmsg.Format(errmsg.OpDropboxScan, err))
	}

	cat, err := catalog.Open(cfg.CatalogPath, true)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s", errmsg.Format(errmsg.OpCatalogOpen, err))
	}

	var wl *artist.Whitelist
	if cfg.ArtistWhitelist != "" {
		wl, err = loadWhitelist(cfg.ArtistWhitelist)
		if err != nil {
			cat.Close()
			return nil, nil, nil, err
		}
	} else {
		wl, err = artist.NewWhitelist(nil)
		if err != nil {
			cat.Close()
			return nil, nil, nil, err
		}
	}

	return inbox, cat, wl, nil
}

func runCheck(args []string) error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}

	inbox, cat, wl, err := openComponents(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	report, err := periodic.Scan(inbox, cat, wl)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpPeriodicScan, err))
	}

	periodic.WriteReport(os.Stdout, report)
	if !report.Clean() {
		os.Exit(1)
	}
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	force := fs.Bool("force", false, "commit even if the check reports errors")
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}

	inbox, cat, wl, err := openComponents(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	report, err := periodic.Scan(inbox, cat, wl)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpPeriodicScan, err))
	}
	periodic.WriteReport(os.Stdout, report)

	if !report.Clean() && !*force {
		logger.Println("refusing to import: check reported errors, pass -force to override")
		os.Exit(1)
	}

	if err := periodic.Import(inbox, cat, cfg.Volume, cfg.TempPrefix, cfg.Prefix, cfg.MaxBatchBytes, wl, nil); err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpPeriodicImport, err))
	}

	logger.Println("import complete")
	return nil
}

func runPeriodicImport(args []string) error {
	fs := flag.NewFlagSet("periodic-import", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}

	inbox, cat, wl, err := openComponents(cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	report, err := periodic.Scan(inbox, cat, wl)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpPeriodicScan, err))
	}
	periodic.WriteReport(os.Stdout, report)

	if !report.Clean() {
		logger.Println("skipping import: check reported errors")
		return nil
	}

	if err := periodic.Import(inbox, cat, cfg.Volume, cfg.TempPrefix, cfg.Prefix, cfg.MaxBatchBytes, wl, nil); err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpPeriodicImport, err))
	}

	logger.Println("periodic import complete")
	return nil
}

func runExportNML(args []string) error {
	fs := flag.NewFlagSet("export-nml", flag.ExitOnError)
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpConfigLoad, err))
	}

	cat, err := catalog.Open(cfg.CatalogPath, true)
	if err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpCatalogOpen, err))
	}
	defer cat.Close()

	fileVolume := fmt.Sprintf("vol%02x", cfg.Volume)
	if err := nml.Export(cfg.NMLPath, cat, fileVolume, cfg.Prefix); err != nil {
		return fmt.Errorf("%s", errmsg.Format(errmsg.OpNMLExport, err))
	}

	logger.Println("export complete")
	return nil
}
