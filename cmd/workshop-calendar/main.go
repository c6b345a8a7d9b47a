package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/webimpactuw/workshop-calendar/internal/app"
	"github.com/webimpactuw/workshop-calendar/internal/commands"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			commands.HashPassword(os.Args[2:])
			return
		case "snapshot":
			commands.Snapshot(os.Args[2:])
			return
		}
	}

	// Parse flags
	configPath := flag.String("config", app.DefaultConfigFile, "Path to the TOML config file")
	port := flag.Int("port", 0, "Port to listen on (overrides config and PORT)")
	offline := flag.Bool("offline", false, "Serve the snapshot file instead of querying Sanity")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}

	// Content store
	mode := app.ModeOnline
	var store app.ContentStore
	if *offline {
		mode = app.ModeOffline
		fileStore := app.NewFileStore(cfg.SnapshotFile)
		if err := fileStore.Load(); err != nil {
			log.Fatalf("Failed to load snapshot: %v", err)
		}
		store = fileStore
	} else {
		if cfg.ProjectID == "" {
			log.Fatalf("SANITY_PROJECT_ID is not set (use -offline to serve a snapshot)")
		}
		store = app.NewSanityClient(app.SanityBaseURL(cfg), cfg.Token)
	}

	auth, err := app.LoadAuthenticator(cfg.AuthFile)
	if err != nil {
		log.Fatalf("Failed to load auth credentials: %v", err)
	}

	server := app.NewServer(cfg, app.NewCatalog(store, cfg.CacheTTL), app.CookieThemes{Secure: cfg.SecureCookies}, auth)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	log.Printf("Starting %s in %s mode on http://localhost:%d", cfg.SiteTitle, mode, cfg.Port)
	if *offline {
		log.Printf("Snapshot file: %s", cfg.SnapshotFile)
	} else {
		log.Printf("Sanity project: %s (dataset: %s)", cfg.ProjectID, cfg.Dataset)
	}
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
