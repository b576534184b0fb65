// PowerLift Control - Forklift fleet session and device control.
//
// This is the main entry point for the PowerLift Control service. It
// tracks which operator holds which forklift, keeps the usage ledger,
// and powers the equipment-mounted relays on and off over MQTT as
// sessions start and end.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	_ "github.com/dudumsantos1976-design/power-lift-control/migrations"

	"github.com/dudumsantos1976-design/power-lift-control/internal/api"
	"github.com/dudumsantos1976-design/power-lift-control/internal/dispatch"
	"github.com/dudumsantos1976-design/power-lift-control/internal/equipment"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/config"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/database"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/logging"
	"github.com/dudumsantos1976-design/power-lift-control/internal/infrastructure/mqtt"
	"github.com/dudumsantos1976-design/power-lift-control/internal/metrics"
	"github.com/dudumsantos1976-design/power-lift-control/internal/operator"
	"github.com/dudumsantos1976-design/power-lift-control/internal/session"
	"github.com/dudumsantos1976-design/power-lift-control/internal/settings"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0"
var version = "dev"

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// consistent exit-code handling.
func run(ctx context.Context) error {
	// A .env file is optional; environment overrides still apply
	// without one.
	_ = godotenv.Load()

	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting PowerLift Control", "version", version)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	eqRepo := equipment.NewSQLiteRepository(db.DB)
	opRepo := operator.NewSQLiteRepository(db.DB)
	ledger := session.NewSQLiteRepository(db.DB)
	settingsRepo := settings.NewRepository(db.DB, log)

	// Device command dispatch: broker settings are re-read per command,
	// so there is no broker connection to establish at startup.
	dispatcher := dispatch.NewDispatcher(settingsRepo, mqtt.NewPublisher(), log)

	sessionSvc := session.NewService(db.DB, eqRepo, ledger, opRepo, dispatcher, log)

	metrics.Register(eqRepo)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Logger:    log,
		Equipment: eqRepo,
		Operators: opRepo,
		Sessions:  sessionSvc,
		Ledger:    ledger,
		Settings:  settingsRepo,
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("PowerLift Control started",
		"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		"site", cfg.Site.Name,
	)

	// Block until a shutdown signal arrives.
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the config file path from the environment or
// the default.
func getConfigPath() string {
	if path := os.Getenv("POWERLIFT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
