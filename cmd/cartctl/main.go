// Command cartctl is a terminal cart: the same cart store the storefront uses,
// persisted to a local file instead of a cookie.
package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/app"
	"github.com/phenrril/storefront/internal/cart"
	"github.com/phenrril/storefront/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	c := &cli{build: buildSession}
	root := c.rootCmd()
	err := root.Execute()
	if cerr := c.close(); cerr != nil {
		zlog.Warn().Err(cerr).Msg("cart not fully saved")
	}
	if err != nil {
		os.Exit(1)
	}
}

func buildSession(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(cfg.Level())

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slot := cart.NewAsyncSlot(cart.NewFileSlot(cfg.Cart.File))
	store := cart.NewStore(ctx, slot, cart.WithHooks(a.Metrics.Hooks()))
	return &session{
		catalog: a.CatalogUC,
		handoff: a.Handoff,
		store:   store,
		slot:    slot,
		release: a.Close,
	}, nil
}
