package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/phenrril/storefront/internal/adapters/cache/redis"
	"github.com/phenrril/storefront/internal/adapters/commerce"
	"github.com/phenrril/storefront/internal/adapters/httpserver"
	pgrepo "github.com/phenrril/storefront/internal/adapters/repo/postgres"
	"github.com/phenrril/storefront/internal/checkout"
	"github.com/phenrril/storefront/internal/config"
	"github.com/phenrril/storefront/internal/domain"
	"github.com/phenrril/storefront/internal/metrics"
	"github.com/phenrril/storefront/internal/usecase"
	"github.com/phenrril/storefront/internal/variant"
)

// App agrupa las dependencias de larga vida. Los carritos no: el servidor HTTP
// arma uno por request y cartctl uno por proceso.
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Redis     *goredis.Client
	Commerce  *commerce.Client
	Catalog   domain.Catalog
	CatalogUC *usecase.CatalogUC
	AccountUC *usecase.AccountUC
	Checkout  domain.CheckoutService
	Handoff   *checkout.Handoff
	Metrics   *metrics.Cart
	Registry  *prometheus.Registry
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	cc, err := commerce.New(commerce.Config{
		BaseURL:      cfg.Commerce.BaseURL,
		ClientID:     cfg.Commerce.ClientID,
		ClientSecret: cfg.Commerce.ClientSecret,
		TokenURL:     cfg.Commerce.TokenURL,
		Timeout:      cfg.Commerce.Timeout,
	})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Commerce: cc}

	var catalog domain.Catalog = cc
	if cfg.Catalog.Source == "postgres" {
		db, err := OpenDB(cfg.Database)
		if err != nil {
			return nil, err
		}
		a.DB = db
		catalog = pgrepo.NewProductRepo(db)
	}
	if cfg.Redis.Addr != "" {
		rc, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Warn().Err(err).Msg("catalog cache disabled")
		} else {
			a.Redis = rc
			catalog = redis.NewCatalog(catalog, redis.NewCache(rc, "storefront"), cfg.Redis.TTL)
		}
	}
	a.Catalog = catalog

	a.Checkout = cc
	if cfg.Checkout.Endpoint != "" {
		a.Checkout = checkout.NewHTTPService(cfg.Checkout.Endpoint, cfg.Checkout.Timeout)
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.NewCartWithRegisterer(a.Registry)

	a.CatalogUC = &usecase.CatalogUC{Catalog: catalog}
	a.AccountUC = usecase.NewAccountUC(cc)
	a.Handoff = checkout.NewHandoff(a.Checkout, a.Metrics.ObserveHandoff)
	return a, nil
}

// OpenDB conecta a postgres con el DSN configurado.
func OpenDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.ConnString()), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func (a *App) HTTPHandler() (http.Handler, error) {
	return httpserver.New(httpserver.Deps{
		Catalog:            a.CatalogUC,
		Accounts:           a.AccountUC,
		Handoff:            a.Handoff,
		Checkout:           a.Checkout,
		Classifier:         variant.DefaultClassifier(),
		CartHooks:          a.Metrics.Hooks(),
		MetricsHandler:     promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		SessionSecret:      a.Config.Server.SessionSecret,
		StorefrontPassword: a.Config.Server.StorefrontPassword,
		CartCookieName:     a.Config.Cart.CookieName,
		CartMaxAge:         a.Config.Cart.MaxAge,
		Secure:             a.Config.Server.Production(),
	})
}

// Migrate crea las tablas del espejo cuando el catálogo sale de postgres.
func (a *App) Migrate() error {
	if a.DB == nil {
		return nil
	}
	return pgrepo.AutoMigrate(a.DB)
}

func (a *App) Close() error {
	var errs []error
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
