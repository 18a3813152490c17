package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	pg "petshop-api/internal/adapters/storage/postgres"
	"petshop-api/internal/config"
	"petshop-api/internal/middleware"
	"petshop-api/internal/platform/logger"
	"petshop-api/internal/router"
)

// @title Petshop API
// @version 1.0
// @description Clientes, animales, empleados, catálogo de servicios y reservas.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromConfig("error", "text", "petshop-api").Error("config", logger.Fields{"error": err})
		os.Exit(1)
	}

	log := logger.NewFromConfig(cfg.Log.Level, cfg.Log.Format, cfg.AppName)

	var db *sql.DB
	if cfg.DB.DSN != "" {
		db, err = pg.Open(cfg.DB)
		if err != nil {
			log.Error("database connection failed", logger.Fields{"error": err})
			os.Exit(1)
		}
		defer db.Close()

		if cfg.DB.AutoMigrate {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.PingTimeout*10)
			err := pg.Migrate(ctx, db)
			cancel()
			if err != nil {
				log.Error("migration failed", logger.Fields{"error": err})
				os.Exit(1)
			}
			log.Info("schema applied", nil)
		}
	}

	r := router.NewRouter(router.Options{
		DB:     db,
		Logger: log,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RPS,
			Burst:             cfg.RateLimit.Burst,
		},
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", logger.Fields{"addr": cfg.Addr(), "postgres": db != nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server error", logger.Fields{"error": err})
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", logger.Fields{"error": err})
	}
	log.Info("server stopped", nil)
}
