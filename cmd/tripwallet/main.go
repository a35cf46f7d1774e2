package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tripwallet/internal/config"
	"tripwallet/internal/log"
	"tripwallet/internal/rates"
	"tripwallet/internal/services"
	"tripwallet/internal/storage"
)

var rootCmd = &cobra.Command{
	Use:   "tripwallet",
	Short: "Travel expense tracker",
	Long:  `tripwallet records travel expenses per country and trip, converts them into your home currency and serves statistics over HTTP.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env is fine, the environment may already be set.
		_ = godotenv.Load()
	},
}

func init() {
	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(dumpCommand())
	rootCmd.AddCommand(restoreCommand())
	rootCmd.AddCommand(rateCommand())
}

// app bundles the wiring shared by every subcommand.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	repo     *storage.Repository
	resolver *rates.Resolver
	svc      *services.Service
}

func newApp() (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.Setup(cfg.LogLevel)

	repo, err := storage.Open(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	resolver := rates.NewResolver(rates.Options{
		Endpoints: rates.Endpoints{
			PrimaryDated:  cfg.RatePrimaryDated,
			MirrorDated:   cfg.RateMirrorDated,
			PrimaryLatest: cfg.RatePrimaryLatest,
			MirrorLatest:  cfg.RateMirrorLatest,
		},
		TierTimeout: cfg.RateTierTimeout,
		TodayTTL:    cfg.RateTodayTTL,
		CacheSize:   cfg.RateCacheSize,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		repo:     repo,
		resolver: resolver,
		svc:      services.New(repo, resolver),
	}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.logger.Error("Failed to close database", log.FieldError, err)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
