package session

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/pkg/config"
	"github.com/vittoria-dev/menu-engine/pkg/enums"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
)

type stubCatalog struct {
	products map[uuid.UUID]*catalog.Product
	sizes    map[uuid.UUID][]catalog.SizeAssignment
	included map[uuid.UUID][]catalog.IncludedIngredient
	extras   map[uuid.UUID][]catalog.ExtraIngredient

	failSizes    bool
	failIncluded bool
	failExtras   bool
}

func newStubCatalog() *stubCatalog {
	return &stubCatalog{
		products: make(map[uuid.UUID]*catalog.Product),
		sizes:    make(map[uuid.UUID][]catalog.SizeAssignment),
		included: make(map[uuid.UUID][]catalog.IncludedIngredient),
		extras:   make(map[uuid.UUID][]catalog.ExtraIngredient),
	}
}

func (s *stubCatalog) add(f productFixture) {
	s.products[f.product.ID] = f.product
	s.sizes[f.product.ID] = f.sizes
	s.included[f.product.ID] = f.included
	s.extras[f.product.ID] = f.extras
}

func (s *stubCatalog) GetProduct(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "menu item not found")
	}
	return p, nil
}

func (s *stubCatalog) GetSizes(_ context.Context, id uuid.UUID) ([]catalog.SizeAssignment, error) {
	if s.failSizes {
		return nil, errors.New(errors.CodeDependency, "catalog unavailable")
	}
	return s.sizes[id], nil
}

func (s *stubCatalog) GetIncludedIngredients(_ context.Context, id uuid.UUID) ([]catalog.IncludedIngredient, error) {
	if s.failIncluded {
		return nil, errors.New(errors.CodeDependency, "catalog unavailable")
	}
	return s.included[id], nil
}

func (s *stubCatalog) GetExtraIngredients(_ context.Context, id uuid.UUID) ([]catalog.ExtraIngredient, error) {
	if s.failExtras {
		return nil, errors.New(errors.CodeDependency, "catalog unavailable")
	}
	return s.extras[id], nil
}

func (s *stubCatalog) GetRecommendedIngredients(_ context.Context, _ uuid.UUID) ([]catalog.RecommendedIngredient, error) {
	return nil, nil
}

func sessionCfg() config.SessionConfig {
	return config.SessionConfig{IdleTTL: 30 * time.Minute, MaxOpen: 4, MaxNoteLen: 100, MaxQuantity: 99}
}

func newTestManager(t *testing.T, gate *stubGate) (*Manager, productFixture) {
	t.Helper()
	f := newPizzaFixture()
	cat := newStubCatalog()
	cat.add(f)
	committer := NewCommitter(gate, &recordingPublisher{}, nil, nil)
	return NewManager(cat, committer, sessionCfg(), nil, nil), f
}

func TestManagerOpenAndGet(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})

	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)
	assert.Equal(t, 1, mgr.OpenCount())

	got, err := mgr.Get(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Same(t, m, got)

	_, err = mgr.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestManagerOpenUnknownProduct(t *testing.T) {
	mgr, _ := newTestManager(t, &stubGate{})
	_, err := mgr.Open(context.Background(), uuid.New(), "op-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
	assert.Zero(t, mgr.OpenCount())
}

func TestManagerEnforcesMaxOpen(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	for i := 0; i < 4; i++ {
		_, err := mgr.Open(context.Background(), f.product.ID, "op-1")
		require.NoError(t, err)
	}

	_, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.Error(t, err)
	assert.Equal(t, errors.CodeConflict, errors.As(err).Code())
}

func TestManagerOpensDegradedWhenOneSectionFails(t *testing.T) {
	f := newPizzaFixture()
	cat := newStubCatalog()
	cat.add(f)
	cat.failExtras = true
	mgr := NewManager(cat, NewCommitter(&stubGate{}, &recordingPublisher{}, nil, nil), sessionCfg(), nil, nil)

	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err, "one failed section must not refuse the session")
	assert.Equal(t, 1, mgr.OpenCount())

	// Loaded sections stay usable.
	require.NoError(t, m.ToggleIncluded(f.included[0].IngredientID))

	// The failed section is disabled until it loads.
	err = m.ToggleExtra(f.extras[0].IngredientID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependency, errors.As(err).Code())

	// The next access reloads it transparently.
	cat.failExtras = false
	_, err = mgr.Get(context.Background(), m.ID())
	require.NoError(t, err)
	require.NoError(t, m.ToggleExtra(f.extras[0].IngredientID))
	assert.Len(t, m.AddedExtras(), 1)
}

func TestManagerDegradedSizesReloadPreselectsDefault(t *testing.T) {
	f := newPizzaFixture()
	cat := newStubCatalog()
	cat.add(f)
	cat.failSizes = true
	mgr := NewManager(cat, NewCommitter(&stubGate{}, &recordingPublisher{}, nil, nil), sessionCfg(), nil, nil)

	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)
	assert.Equal(t, enums.SessionStateIdle, m.State())

	err = m.SelectSize(f.normaleID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependency, errors.As(err).Code())

	// Commit is refused while the sizes section is down, and the session
	// stays open for a later retry.
	_, err = mgr.Commit(context.Background(), m.ID(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDependency, errors.As(err).Code())
	assert.Equal(t, 1, mgr.OpenCount())

	cat.failSizes = false
	_, err = mgr.Get(context.Background(), m.ID())
	require.NoError(t, err)
	assert.Equal(t, enums.SessionStateSizeSelected, m.State())
	require.NotNil(t, m.SelectedSize())
	assert.True(t, m.SelectedSize().IsDefault)
	require.NoError(t, m.SelectSize(f.maxiID))
}

func TestManagerShortcutScopedToActiveSession(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	first, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)
	second, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	require.NoError(t, mgr.Activate(first.ID()))

	// Keystrokes aimed at a non-active session are discarded.
	_, err = mgr.PressKey(second.ID(), 'm')
	require.Error(t, err)
	assert.Equal(t, errors.CodeStateConflict, errors.As(err).Code())
	assert.Empty(t, second.RemovedIngredientIDs())

	res, err := mgr.PressKey(first.ID(), 'b')
	require.NoError(t, err)
	require.NotNil(t, res.ToggledID)
	assert.Equal(t, f.included[1].IngredientID, *res.ToggledID)
	assert.Equal(t, []uuid.UUID{f.included[1].IngredientID}, first.RemovedIngredientIDs())
	assert.Empty(t, second.RemovedIngredientIDs(), "the inactive machine is untouched")
}

func TestManagerSwitchingActiveSessionResetsPrefix(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	first, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)
	second, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	require.NoError(t, mgr.Activate(first.ID()))
	// "Mozzarella" and "Basilico" share no prefix, so 'm' would resolve
	// uniquely; use an escape-visible prefix via two sessions instead.
	_, err = mgr.PressKey(first.ID(), 'b')
	require.NoError(t, err)

	require.NoError(t, mgr.Activate(second.ID()))
	res, err := mgr.EscapeKey(second.ID())
	require.NoError(t, err)
	assert.Equal(t, enums.ShortcutStateIdle, res.State)
	assert.Empty(t, res.Prefix)
}

func TestManagerCommitRemovesSession(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	item, err := mgr.Commit(context.Background(), m.ID(), nil)
	require.NoError(t, err)
	assert.False(t, item.IsSplit)
	assert.Zero(t, mgr.OpenCount())

	_, err = mgr.Get(context.Background(), m.ID())
	require.Error(t, err)
}

func TestManagerCommitUnavailableRemovesCancelledSession(t *testing.T) {
	gate := &stubGate{unavailable: map[uuid.UUID]bool{}}
	mgr, f := newTestManager(t, gate)
	gate.unavailable[f.product.ID] = true

	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	_, err = mgr.Commit(context.Background(), m.ID(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeUnavailable, errors.As(err).Code())
	assert.Zero(t, mgr.OpenCount(), "a gate abort discards the cancelled session")
}

func TestManagerCommitValidationFailureKeepsSessionOpen(t *testing.T) {
	gate := &stubGate{}
	f := newPizzaFixture()
	f.sizes[0].IsDefault = false
	cat := newStubCatalog()
	cat.add(f)
	mgr := NewManager(cat, NewCommitter(gate, &recordingPublisher{}, nil, nil), sessionCfg(), nil, nil)

	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	_, err = mgr.Commit(context.Background(), m.ID(), nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeValidation, errors.As(err).Code())
	assert.Equal(t, 1, mgr.OpenCount(), "the operator can correct and retry")
}

func TestManagerCommitSplit(t *testing.T) {
	sizeID := uuid.New()
	first := newPizzaFixture()
	first.sizes = []catalog.SizeAssignment{{ID: uuid.New(), SizeID: sizeID, Name: "Normale", PriceMultiplier: 1.0, IsDefault: true, AllowsSplit: true}}
	second := newPizzaFixture()
	second.product = &catalog.Product{
		ID: uuid.New(), Name: "Diavola", BasePrice: dec("10.20"),
		AllowSizeSelection: true, AllowIngredients: true, CategoryAllowsSplit: true,
	}
	second.sizes = []catalog.SizeAssignment{{ID: uuid.New(), SizeID: sizeID, Name: "Normale", PriceMultiplier: 1.0, IsDefault: true, AllowsSplit: true}}

	cat := newStubCatalog()
	cat.add(first)
	cat.add(second)
	mgr := NewManager(cat, NewCommitter(&stubGate{}, &recordingPublisher{}, nil, nil), sessionCfg(), nil, nil)

	a, err := mgr.Open(context.Background(), first.product.ID, "op-1")
	require.NoError(t, err)
	b, err := mgr.Open(context.Background(), second.product.ID, "op-1")
	require.NoError(t, err)

	item, err := mgr.Commit(context.Background(), a.ID(), ptr(b.ID()))
	require.NoError(t, err)
	assert.True(t, item.IsSplit)
	require.Len(t, item.ProductIDs, 2)
	assert.Zero(t, mgr.OpenCount())
}

func TestManagerCancel(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	m, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)
	require.NoError(t, mgr.Activate(m.ID()))

	require.NoError(t, mgr.Cancel(m.ID()))
	assert.Zero(t, mgr.OpenCount())
	assert.Equal(t, uuid.Nil, mgr.ActiveSessionID(), "cancelling the active session clears the automaton scope")

	err = mgr.Cancel(m.ID())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.As(err).Code())
}

func TestManagerPruneIdle(t *testing.T) {
	mgr, f := newTestManager(t, &stubGate{})
	_, err := mgr.Open(context.Background(), f.product.ID, "op-1")
	require.NoError(t, err)

	assert.Zero(t, mgr.PruneIdle(time.Now()))
	assert.Equal(t, 1, mgr.OpenCount())

	dropped := mgr.PruneIdle(time.Now().Add(time.Hour))
	assert.Equal(t, 1, dropped)
	assert.Zero(t, mgr.OpenCount())
}

func ptr[T any](v T) *T { return &v }
