package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fitcoach/internal/api"
	"github.com/claude/fitcoach/internal/authstate"
	"github.com/claude/fitcoach/internal/schedule"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", "", "FitCoach server URL (e.g. https://fitcoach.tail1234.ts.net)")
	stateDir := flag.String("state-dir", "", "directory for the stored API key (default ~/.fitcoach)")
	open := flag.String("open", "", "assignment ID to open on start")
	verbose := flag.Bool("v", false, "log requests and session events to stderr")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitcoach-session", Version)
		return
	}

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitcoach-session -server <URL> [-open <assignment-id>] [-state-dir DIR]\n\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if *stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			log.Error("failed to get home directory", "error", err)
			os.Exit(1)
		}
		*stateDir = filepath.Join(homeDir, ".fitcoach")
	}

	ctx := context.Background()

	tokens, err := authstate.OpenSQLite(*stateDir)
	if err != nil {
		log.Error("failed to open state database", "error", err)
		os.Exit(1)
	}
	defer tokens.Close()
	if err := tokens.Hydrate(ctx); err != nil {
		log.Error("failed to read stored API key", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(*serverURL, tokens, log)
	sh := newShell(client, tokens, schedule.Realtime{}, os.Stdin, os.Stdout, log)

	if tokens.Token() == "" {
		sh.printf("not logged in; use login <api-key>\n")
	}
	if *open != "" {
		if err := sh.open(ctx, []string{*open}); err != nil {
			sh.printf("error: %v\n", err)
		}
	}
	sh.run(ctx)
}
