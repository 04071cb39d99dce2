package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"service-planner/internal/app"
	"service-planner/internal/config"
	servicemigrations "service-planner/migrations"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags|log.LUTC)

	root := &cobra.Command{
		Use:           "planner",
		Short:         "Personal weekly scheduling service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCommand(logger), migrateCommand(logger))

	if err := root.Execute(); err != nil {
		logger.Fatalf("error: %v", err)
	}
}

func serveCommand(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run database migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(logger)
		},
	}
}

func migrateCommand(logger *log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := servicemigrations.Up(db.DB); err != nil {
				return err
			}
			logger.Printf("migrations completed successfully")
			return nil
		},
	}
}

func runServe(logger *log.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	debugEnabled := strings.EqualFold(strings.TrimSpace(cfg.LogLevel), "debug")
	debugf := func(format string, args ...any) {
		if debugEnabled {
			logger.Printf("[DEBUG] "+format, args...)
		}
	}

	debugf("config loaded: http_addr=%s genai_base_url=%s db_max_open=%d db_max_idle=%d db_conn_max_lifetime=%s",
		cfg.HTTPAddr,
		cfg.GenAIBaseURL,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
		cfg.DBConnMaxLifetime,
	)

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	debugf("database connection successful")

	if err := servicemigrations.Up(db.DB); err != nil {
		return err
	}
	debugf("migrations completed successfully")

	application, err := app.New(db, cfg, logger)
	if err != nil {
		return err
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.StartJobs()
	defer application.StopJobs()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           application.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Printf("http shutdown error: %v", err)
		}
	}()

	logger.Printf("service-planner listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
