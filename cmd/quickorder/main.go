package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/quickorder/internal/catalog"
	"github.com/vasiliy-maslov/quickorder/internal/config"
	"github.com/vasiliy-maslov/quickorder/internal/db"
	apihttp "github.com/vasiliy-maslov/quickorder/internal/handler/http"
	"github.com/vasiliy-maslov/quickorder/internal/order"
	"github.com/vasiliy-maslov/quickorder/internal/storage"
	"github.com/vasiliy-maslov/quickorder/internal/storage/gateway"
	"github.com/vasiliy-maslov/quickorder/internal/storage/memory"
	"github.com/vasiliy-maslov/quickorder/internal/storage/postgres"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "quickorder").Logger()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	level, err := zerolog.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		log.Warn().Str("log_level", cfg.App.LogLevel).Msg("Unknown log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("QuickOrder server starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	var durable storage.Backend
	if cfg.Postgres.Enabled() {
		pg, err := db.New(ctx, cfg.Postgres)
		if err != nil {
			log.Warn().Err(err).Msg("Invalid database settings, running in demo mode")
		} else {
			store := postgres.New(pg.Pool)
			durable = store
			defer pg.Close()
			defer store.Close()

			if err := pg.Ping(ctx); err != nil {
				log.Warn().Err(err).Msg("Database unreachable, serving from the in-memory store until it answers")
			}
			g.Go(func() error {
				err := db.MigrateWhenReady(gctx, cfg.Postgres.RetryInterval, pg.Ping, func() error {
					return db.Migrate(cfg.Postgres)
				})
				if err != nil && gctx.Err() == nil {
					log.Error().Err(err).Msg("Failed to apply migrations")
				}
				return nil
			})
		}
	} else {
		log.Warn().Msg("DB_HOST is not set, running in demo mode")
	}

	gw := gateway.New(durable, memory.New(cfg.App.RestaurantID))

	orderSvc := order.NewService(gw, order.NewCounter(), cfg.App.RestaurantID)
	requestSvc := order.NewRequestService(gw)
	catalogSvc := catalog.NewService(gw, cfg.App.RestaurantID)

	router := apihttp.NewRouter(
		apihttp.NewOrderHandler(orderSvc, requestSvc),
		apihttp.NewAdminHandler(catalogSvc),
		gw.DurableHealthy,
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}
	log.Info().Msg("QuickOrder server stopped gracefully")
}
