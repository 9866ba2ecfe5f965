// Command catalog-import loads a spreadsheet catalog into the postgres mirror
// the storefront reads when CATALOG_SOURCE=postgres, and writes it back out.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/adapters/catalogxlsx"
	pgrepo "github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/app"
	"github.com/phenrril/storefront/internal/config"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "catalog-import",
		Short:        "Move the catalog between a spreadsheet and postgres",
		SilenceUsage: true,
	}
	root.AddCommand(importCmd(), exportCmd())
	return root
}

func openDB() (*gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(cfg.Level())
	db, err := app.OpenDB(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := pgrepo.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func importCmd() *cobra.Command {
	var keepFeatured bool
	cmd := &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Upsert every product in the sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			rows, err := catalogxlsx.Import(f)
			if err != nil {
				return err
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			n, err := importRows(cmd.Context(), rows, pgrepo.NewProductRepo(db), pgrepo.NewFeaturedProductRepo(db), !keepFeatured)
			if err != nil {
				return err
			}
			zlog.Info().Int("products", len(rows)).Int("featured", n).Str("file", args[0]).Msg("catalog imported")
			return nil
		},
	}
	cmd.Flags().BoolVar(&keepFeatured, "keep-featured", false, "leave existing featured products in place")
	return cmd
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write every active product to a sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer closeDB(db)

			products, err := pgrepo.NewProductRepo(db).All(cmd.Context())
			if err != nil {
				return err
			}
			handles, err := pgrepo.NewFeaturedProductRepo(db).Handles(cmd.Context())
			if err != nil {
				return err
			}

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, f.Close()) }()
			rows := exportRows(products, handles)
			if err := catalogxlsx.Export(f, rows); err != nil {
				return err
			}
			zlog.Info().Int("products", len(rows)).Str("file", args[0]).Msg("catalog exported")
			return nil
		},
	}
}
