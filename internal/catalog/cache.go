package catalog

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/redis"
)

const (
	sectionProduct     = "product"
	sectionSizes       = "sizes"
	sectionIncluded    = "included"
	sectionExtras      = "extras"
	sectionRecommended = "recommended"
)

// cacheStore is the narrow Redis surface the cache needs.
type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CatalogKey(section, productID string) string
}

// CachedProvider is a read-through cache in front of a catalog source.
// Cache failures degrade to the source; they never fail the read.
type CachedProvider struct {
	source Provider
	store  cacheStore
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedProvider wraps source with a Redis-backed read-through cache.
func NewCachedProvider(source Provider, store *redis.Client, ttl time.Duration, log *logger.Logger) *CachedProvider {
	return &CachedProvider{source: source, store: store, ttl: ttl, log: log}
}

// GetProduct implements Provider.
func (c *CachedProvider) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	var cached Product
	if c.fetch(ctx, sectionProduct, productID, &cached) {
		return &cached, nil
	}
	fresh, err := c.source.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, sectionProduct, productID, fresh)
	return fresh, nil
}

// GetSizes implements Provider.
func (c *CachedProvider) GetSizes(ctx context.Context, productID uuid.UUID) ([]SizeAssignment, error) {
	var cached []SizeAssignment
	if c.fetch(ctx, sectionSizes, productID, &cached) {
		return cached, nil
	}
	fresh, err := c.source.GetSizes(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, sectionSizes, productID, fresh)
	return fresh, nil
}

// GetIncludedIngredients implements Provider.
func (c *CachedProvider) GetIncludedIngredients(ctx context.Context, productID uuid.UUID) ([]IncludedIngredient, error) {
	var cached []IncludedIngredient
	if c.fetch(ctx, sectionIncluded, productID, &cached) {
		return cached, nil
	}
	fresh, err := c.source.GetIncludedIngredients(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, sectionIncluded, productID, fresh)
	return fresh, nil
}

// GetExtraIngredients implements Provider.
func (c *CachedProvider) GetExtraIngredients(ctx context.Context, productID uuid.UUID) ([]ExtraIngredient, error) {
	var cached []ExtraIngredient
	if c.fetch(ctx, sectionExtras, productID, &cached) {
		return cached, nil
	}
	fresh, err := c.source.GetExtraIngredients(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, sectionExtras, productID, fresh)
	return fresh, nil
}

// GetRecommendedIngredients implements Provider.
func (c *CachedProvider) GetRecommendedIngredients(ctx context.Context, productID uuid.UUID) ([]RecommendedIngredient, error) {
	var cached []RecommendedIngredient
	if c.fetch(ctx, sectionRecommended, productID, &cached) {
		return cached, nil
	}
	fresh, err := c.source.GetRecommendedIngredients(ctx, productID)
	if err != nil {
		return nil, err
	}
	c.put(ctx, sectionRecommended, productID, fresh)
	return fresh, nil
}

// Invalidate drops every cached section for the product.
func (c *CachedProvider) Invalidate(ctx context.Context, productID uuid.UUID) error {
	id := productID.String()
	keys := []string{
		c.store.CatalogKey(sectionProduct, id),
		c.store.CatalogKey(sectionSizes, id),
		c.store.CatalogKey(sectionIncluded, id),
		c.store.CatalogKey(sectionExtras, id),
		c.store.CatalogKey(sectionRecommended, id),
	}
	return c.store.Del(ctx, keys...)
}

func (c *CachedProvider) fetch(ctx context.Context, section string, productID uuid.UUID, dest any) bool {
	raw, err := c.store.Get(ctx, c.store.CatalogKey(section, productID.String()))
	if err != nil {
		if !goerrors.Is(err, redis.Nil) && c.log != nil {
			c.log.Warn(c.log.WithProductID(ctx, productID.String()), "catalog cache read failed, falling back to source")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		if c.log != nil {
			c.log.Warn(c.log.WithProductID(ctx, productID.String()), "catalog cache entry corrupt, falling back to source")
		}
		return false
	}
	return true
}

func (c *CachedProvider) put(ctx context.Context, section string, productID uuid.UUID, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, c.store.CatalogKey(section, productID.String()), string(payload), c.ttl); err != nil && c.log != nil {
		c.log.Warn(c.log.WithProductID(ctx, productID.String()), "catalog cache write failed")
	}
}
