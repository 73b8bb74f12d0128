package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/fitcoach/internal/config"
	"github.com/claude/fitcoach/internal/seed"
	"github.com/claude/fitcoach/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	planPath := flag.String("plan", "", "path to YAML plan file (required)")
	migrationsPath := flag.String("migrations", "migrations", "path to migrations directory")
	dryRun := flag.Bool("dry-run", false, "validate the plan and report counts without writing")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *planPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitcoach-seed -config config.yaml -plan plan.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	plan, err := seed.Load(*planPath)
	if err != nil {
		log.Error("invalid plan", "path", *planPath, "error", err)
		os.Exit(1)
	}
	log.Info("plan loaded",
		"exercises", len(plan.Exercises),
		"workouts", len(plan.Workouts),
		"clients", len(plan.Clients),
		"assignments", len(plan.Assignments),
	)

	ctx := context.Background()

	if *dryRun {
		log.Info("DRY RUN mode: no data will be written to the database")
		stats, err := seed.New(nil, log, true).Seed(ctx, plan)
		if err != nil {
			log.Error("seed failed", "error", err)
			os.Exit(1)
		}
		printStats(log, stats)
		return
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()

	// Run migrations
	if err := storage.RunMigrations(dsn, *migrationsPath); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	// Connect database
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	stats, err := seed.New(db, log, false).Seed(ctx, plan)
	if err != nil {
		log.Error("seed failed", "error", err)
		printStats(log, stats)
		os.Exit(1)
	}

	printStats(log, stats)
	for _, c := range plan.Clients {
		log.Info("client", "key", c.Key, "id", seed.ClientID(c.Key))
	}
	log.Info("seed complete")
}

func printStats(log *slog.Logger, stats *seed.Stats) {
	log.Info("seed stats",
		"exercises_inserted", stats.ExercisesInserted,
		"exercises_existing", stats.ExercisesExisting,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_existing", stats.WorkoutsExisting,
		"workout_exercises", stats.WorkoutExercisesTotal,
		"clients_inserted", stats.ClientsInserted,
		"clients_existing", stats.ClientsExisting,
		"assignments_inserted", stats.AssignmentsInserted,
		"assignments_existing", stats.AssignmentsExisting,
	)
}
