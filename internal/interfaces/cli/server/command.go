package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/shoppingos/sospay/internal/infrastructure/config"
	"github.com/shoppingos/sospay/internal/infrastructure/database"
	"github.com/shoppingos/sospay/internal/infrastructure/migration"
	httpRouter "github.com/shoppingos/sospay/internal/interfaces/http"
	"github.com/shoppingos/sospay/internal/shared/biztime"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/version"
)

var (
	env                string
	configPath         string
	skipMigrationCheck bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Start the sospay HTTP server: checkout, bank webhooks and the refund admin API.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&skipMigrationCheck, "skip-migration-check", false, "Skip migration status check on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Server.Mode = mapEnvToGinMode(env)

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode == gin.DebugMode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return fmt.Errorf("failed to initialize business timezone: %w", err)
	}

	if !version.Valid(cfg.Gateway.PluginVersion) {
		return fmt.Errorf("gateway.plugin_version %q is not a semantic version", cfg.Gateway.PluginVersion)
	}

	log.Infow("starting server",
		"environment", env,
		"version", httpRouter.Version,
		"test_mode", cfg.Gateway.TestMode)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	checkMigrations(cfg, log)

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = httpRouter.InitRedis(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
	}

	container, err := httpRouter.NewContainer(database.Get(), redisClient, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	container.SetupRoutes()

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.Engine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("server starting",
			"address", cfg.Server.GetAddr(),
			"mode", cfg.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serveErr:
		_ = container.Shutdown(context.Background())
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
		return err
	}

	if err := container.Shutdown(ctx); err != nil {
		log.Warnw("failed to shut down background work cleanly", "error", err)
	}

	log.Info("server exited gracefully")
	return nil
}

// checkMigrations reports the mysql schema version. sqlite is migrated by
// database.Init.
func checkMigrations(cfg *config.Config, log logger.Interface) {
	if skipMigrationCheck || cfg.Database.Driver == database.DriverSQLite {
		return
	}

	current, err := migration.NewGooseStrategy(log).GetVersion(database.Get())
	if err != nil {
		log.Warnw("failed to check migration status", "error", err)
		return
	}

	versions, err := migration.Versions()
	if err != nil {
		log.Warnw("failed to list embedded migrations", "error", err)
		return
	}
	if n := len(versions); n > 0 && versions[n-1] > current {
		log.Warnw("database schema is behind, run `sospay migrate up`",
			"current", current,
			"latest", versions[n-1])
		return
	}
	log.Infow("current migration version", "version", current)
}

func mapEnvToGinMode(environment string) string {
	switch environment {
	case "production", "prod", "release":
		return gin.ReleaseMode
	case "test", "testing":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
