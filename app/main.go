package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"tasks-api/app/config"
	"tasks-api/app/controllers"
	"tasks-api/app/routes"
	"tasks-api/app/services"
	"tasks-api/app/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), v, configFile)
		},
	}
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	serveCmd.Flags().String("store", "", "store driver: sqlite or neo4j")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("store.driver", serveCmd.Flags().Lookup("store"))

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the store schema and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(v, configFile)
			if err != nil {
				return err
			}
			s, err := openStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close(context.Background())

			if err := s.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("failed to migrate %s store: %w", cfg.Store.Driver, err)
			}
			logger.Info("schema migrated", "driver", cfg.Store.Driver)
			return nil
		},
	}

	rootCmd := &cobra.Command{
		Use:           "tasks",
		Short:         "Hierarchical task list API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

func setup(v *viper.Viper, configFile string) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := config.NewLogger(os.Stderr, cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverNeo4j:
		driver, err := config.InitNeo4j(ctx, cfg.Neo4j)
		if err != nil {
			return nil, err
		}
		return store.NewNeo4jStore(driver, cfg.Neo4j.Database), nil
	default:
		db, err := config.InitSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return store.NewGormStore(db), nil
	}
}

func serve(ctx context.Context, v *viper.Viper, configFile string) error {
	cfg, logger, err := setup(v, configFile)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the store
	taskStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer taskStore.Close(context.Background())

	if err := taskStore.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate %s store: %w", cfg.Store.Driver, err)
	}

	schemas, err := controllers.CompileSchemas()
	if err != nil {
		return err
	}

	taskService := services.NewTaskService(taskStore, logger)
	taskController := controllers.NewTaskController(taskService, schemas, logger)
	router := routes.NewRouter(taskController, cfg.CORS.AllowedOrigins, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running", "addr", cfg.Server.Addr, "store", cfg.Store.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
