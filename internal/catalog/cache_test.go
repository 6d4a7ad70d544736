package catalog

import (
	"context"
	goerrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittoria-dev/menu-engine/pkg/redis"
)

type stubStore struct {
	data    map[string]string
	failing bool
	sets    int
	gets    int
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string]string)}
}

func (s *stubStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	if s.failing {
		return goerrors.New("redis down")
	}
	s.sets++
	s.data[key] = value.(string)
	return nil
}

func (s *stubStore) Get(_ context.Context, key string) (string, error) {
	if s.failing {
		return "", goerrors.New("redis down")
	}
	s.gets++
	v, ok := s.data[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (s *stubStore) Del(_ context.Context, keys ...string) error {
	if s.failing {
		return goerrors.New("redis down")
	}
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *stubStore) CatalogKey(section, productID string) string {
	return strings.Join([]string{"vr", "catalog", section, productID}, ":")
}

type stubSource struct {
	product  *Product
	sizes    []SizeAssignment
	extras   []ExtraIngredient
	included []IncludedIngredient
	calls    map[string]int
	err      error
}

func newStubSource() *stubSource {
	return &stubSource{calls: make(map[string]int)}
}

func (s *stubSource) GetProduct(context.Context, uuid.UUID) (*Product, error) {
	s.calls["product"]++
	return s.product, s.err
}

func (s *stubSource) GetSizes(context.Context, uuid.UUID) ([]SizeAssignment, error) {
	s.calls["sizes"]++
	return s.sizes, s.err
}

func (s *stubSource) GetIncludedIngredients(context.Context, uuid.UUID) ([]IncludedIngredient, error) {
	s.calls["included"]++
	return s.included, s.err
}

func (s *stubSource) GetExtraIngredients(context.Context, uuid.UUID) ([]ExtraIngredient, error) {
	s.calls["extras"]++
	return s.extras, s.err
}

func (s *stubSource) GetRecommendedIngredients(context.Context, uuid.UUID) ([]RecommendedIngredient, error) {
	s.calls["recommended"]++
	return nil, s.err
}

func newCached(source Provider, store cacheStore) *CachedProvider {
	return &CachedProvider{source: source, store: store, ttl: time.Minute}
}

func TestCachedProviderReadThrough(t *testing.T) {
	productID := uuid.New()
	source := newStubSource()
	source.sizes = []SizeAssignment{{ID: uuid.New(), Name: "Normale", PriceMultiplier: 1.0, IsDefault: true}}
	store := newStubStore()
	cached := newCached(source, store)

	first, err := cached.GetSizes(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, source.calls["sizes"])
	assert.Equal(t, 1, store.sets)

	second, err := cached.GetSizes(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Normale", second[0].Name)
	assert.Equal(t, 1, source.calls["sizes"], "second read must come from cache")
}

func TestCachedProviderStoreFailureFallsBack(t *testing.T) {
	productID := uuid.New()
	source := newStubSource()
	source.product = &Product{ID: productID, Name: "Margherita", BasePrice: decimal.RequireFromString("6.50")}
	store := newStubStore()
	store.failing = true
	cached := newCached(source, store)

	product, err := cached.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, "Margherita", product.Name)
	assert.Equal(t, 1, source.calls["product"])
}

func TestCachedProviderCorruptEntryFallsBack(t *testing.T) {
	productID := uuid.New()
	source := newStubSource()
	source.extras = []ExtraIngredient{{IngredientID: uuid.New(), Name: "Funghi", DefaultPrice: decimal.RequireFromString("1.50")}}
	store := newStubStore()
	store.data[store.CatalogKey(sectionExtras, productID.String())] = "{not json"
	cached := newCached(source, store)

	extras, err := cached.GetExtraIngredients(context.Background(), productID)
	require.NoError(t, err)
	require.Len(t, extras, 1)
	assert.Equal(t, 1, source.calls["extras"])
}

func TestCachedProviderInvalidateDropsAllSections(t *testing.T) {
	productID := uuid.New()
	source := newStubSource()
	source.product = &Product{ID: productID, Name: "Margherita"}
	source.sizes = []SizeAssignment{{ID: uuid.New(), Name: "Normale"}}
	store := newStubStore()
	cached := newCached(source, store)

	_, err := cached.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	_, err = cached.GetSizes(context.Background(), productID)
	require.NoError(t, err)
	require.NotEmpty(t, store.data)

	require.NoError(t, cached.Invalidate(context.Background(), productID))
	assert.Empty(t, store.data)

	_, err = cached.GetSizes(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls["sizes"], "invalidated read must hit the source again")
}
