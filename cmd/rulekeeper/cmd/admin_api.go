package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lcgate/rulekeeper/internal/core/api"
	"github.com/lcgate/rulekeeper/internal/core/auth"
	"github.com/lcgate/rulekeeper/internal/core/config"
	"github.com/lcgate/rulekeeper/internal/core/db"
	"github.com/lcgate/rulekeeper/internal/core/server"
	"github.com/lcgate/rulekeeper/internal/core/store"
)

const Version = "0.1.0"

var adminAPICmd = &cobra.Command{
	Use:   "admin-api",
	Short: "Start the REST admin API service",
	RunE:  runAdminAPI,
}

func init() {
	rootCmd.AddCommand(adminAPICmd)
	adminAPICmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	adminAPICmd.Flags().Int("port", 8080, "HTTP server port")
}

func runAdminAPI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	logger := newLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}

	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	var migrationID string
	checkQuery := `SELECT migration_id FROM migrations WHERE migration_id = '002_api_keys.sql'`
	err = database.Get(&migrationID, database.Rebind(checkQuery))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("migration 002_api_keys not applied - run 'rulekeeper migrate up' first")
		}
		return fmt.Errorf("failed to check migrations: %w", err)
	}

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set RK_HMAC_SECRET environment variable)")
	}

	authenticator := auth.NewAuthenticator(secrets, queries)
	st := store.New(database, queries)

	service, err := api.NewService(st, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, api.NewRouter(service, authenticator))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("starting RuleKeeper admin API", "version", Version, "host", cfg.Host, "port", cfg.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		logger.Info("shutting down gracefully")
		return httpServer.Shutdown(ctx)
	}
}
