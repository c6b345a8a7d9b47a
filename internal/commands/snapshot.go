package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/webimpactuw/workshop-calendar/internal/app"
)

// Snapshot handles the snapshot subcommand: it copies every workshop from
// Sanity into the snapshot file used by -offline
func Snapshot(args []string) {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	configPath := fs.String("config", app.DefaultConfigFile, "Path to the TOML config file")
	output := fs.String("out", "", "Snapshot file (default: snapshot_file from config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: workshop-calendar snapshot [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Saves all workshops from Sanity for offline serving.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.ProjectID == "" {
		fmt.Fprintf(os.Stderr, "SANITY_PROJECT_ID is not set\n")
		os.Exit(1)
	}
	path := cfg.SnapshotFile
	if *output != "" {
		path = *output
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := RunSnapshot(ctx, app.NewSanityClient(app.SanityBaseURL(cfg), cfg.Token), path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// RunSnapshot copies every workshop of store into the snapshot at path
func RunSnapshot(ctx context.Context, store app.ContentStore, path string) error {
	workshops, err := store.Workshops(ctx, app.QuarterRef{})
	if err != nil {
		return fmt.Errorf("fetch workshops: %w", err)
	}
	return app.SaveSnapshot(path, app.MetadataSourceSanity, workshops)
}
