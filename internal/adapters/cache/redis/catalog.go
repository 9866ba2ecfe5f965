package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/storefront/internal/domain"
)

// Catalog caches product lookups by handle in front of another catalog. Cache
// failures are logged and fall through to the wrapped catalog. Listings are
// not cached.
type Catalog struct {
	next  domain.Catalog
	cache Cache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCatalog(next domain.Catalog, cache Cache, ttl time.Duration) *Catalog {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Catalog{
		next:  next,
		cache: cache,
		ttl:   ttl,
		log:   log.With().Str("component", "catalog_cache").Logger(),
	}
}

func (c *Catalog) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return c.next.List(ctx, f)
}

func (c *Catalog) ByHandle(ctx context.Context, handle string) (*domain.Product, error) {
	key := c.cache.Key("product", handle)
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn().Err(err).Str("handle", handle).Msg("cache read failed")
	} else if raw != "" {
		var p domain.Product
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		c.log.Warn().Str("handle", handle).Msg("discarding undecodable cache entry")
	}

	p, err := c.next.ByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.log.Warn().Err(err).Str("handle", handle).Msg("cache write failed")
		}
	}
	return p, nil
}
