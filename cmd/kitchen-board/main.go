package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vasiliy-maslov/quickorder/internal/client"
	"github.com/vasiliy-maslov/quickorder/internal/config"
	"github.com/vasiliy-maslov/quickorder/internal/kitchen"
	"github.com/vasiliy-maslov/quickorder/internal/poll"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional .env file")
	advanceID := flag.String("advance", "", "advance this order one step and exit")
	resolveID := flag.String("resolve", "", "resolve this service request and exit")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Logger = log.With().Str("service", "kitchen-board").Logger()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.App.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.App.APIURL)
	syncer := kitchen.NewSyncer(api, cfg.Poll.KitchenInterval, logBoard)

	if *advanceID != "" || *resolveID != "" {
		if err := syncer.Refresh(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to load the kitchen board")
		}
		if *advanceID != "" {
			next, err := syncer.Advance(ctx, *advanceID)
			if err != nil {
				log.Fatal().Err(err).Str("order_id", *advanceID).Msg("Failed to advance order")
			}
			log.Info().Str("order_id", *advanceID).Stringer("new_status", next).Msg("Order advanced")
		}
		if *resolveID != "" {
			if err := syncer.Resolve(ctx, *resolveID); err != nil {
				log.Fatal().Err(err).Str("request_id", *resolveID).Msg("Failed to resolve service request")
			}
			log.Info().Str("request_id", *resolveID).Msg("Service request resolved")
		}
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		syncer.Run(gctx)
		return nil
	})
	g.Go(func() error {
		// Warn staff while the server has lost its database.
		poll.Every(gctx, cfg.Poll.KitchenInterval*6, api.Health, func(durable bool, err error) {
			switch {
			case err != nil:
				log.Warn().Err(err).Msg("Server health check failed")
			case !durable:
				log.Warn().Msg("Server is running on its in-memory store; orders will not survive a restart")
			}
		})
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Kitchen board stopped with error")
		return
	}
	log.Info().Msg("Kitchen board stopped")
}

func logBoard(v kitchen.View) {
	event := log.Info().Int("unknown", len(v.Unknown)).Int("requests", len(v.Requests))
	for _, c := range v.Columns {
		event = event.Int(c.Status.String(), len(c.Orders))
	}
	event.Msg("Board refreshed")

	for _, r := range v.Requests {
		log.Info().Str("request_id", r.ID).Int("table", r.TableNumber).Str("message", r.Message).Msg("Waiter requested")
	}
}
