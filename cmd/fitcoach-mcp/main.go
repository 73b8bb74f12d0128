package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitcoach/internal/api"
	"github.com/claude/fitcoach/internal/authstate"
	"github.com/claude/fitcoach/internal/config"
	fcmcp "github.com/claude/fitcoach/internal/mcp"
	"github.com/claude/fitcoach/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// fitcoach-mcp serves the coaching tools over stdio. With -server it reads
// through the REST API; otherwise it connects to the database named in -config.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	serverURL := flag.String("server", "", "FitCoach server URL (remote mode)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("fitcoach-mcp", Version)
		return
	}

	// stdout carries the protocol
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds fcmcp.DataSource
	if *serverURL != "" {
		ds = api.NewClient(*serverURL, authstate.NewMemory(os.Getenv("FITCOACH_API_KEY")), log)
		log.Info("remote mode", "server", *serverURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		ds = db
		log.Info("local mode", "database", cfg.Database.Name)
	}

	if err := server.ServeStdio(fcmcp.New(ds, Version, log)); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
