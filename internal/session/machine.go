// Package session owns live customization state: one machine per open
// session, a registry of open sessions, and the commit orchestration.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/internal/pricing"
	"github.com/vittoria-dev/menu-engine/pkg/enums"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
)

// Limits bounds operator input on a session.
type Limits struct {
	MaxNoteLen  int
	MaxQuantity int
}

// DefaultLimits mirrors the terminal's input constraints.
var DefaultLimits = Limits{MaxNoteLen: 100, MaxQuantity: 99}

// missingSections marks catalog sections that failed to load when the
// session opened. A missing section is disabled until a later access
// reloads it; everything already loaded stays usable.
type missingSections struct {
	sizes    bool
	included bool
	extras   bool
}

func (s missingSections) any() bool {
	return s.sizes || s.included || s.extras
}

// Machine is one open customization. Each machine owns its state
// exclusively; a split's two halves are two independent machines.
type Machine struct {
	mu       sync.Mutex
	id       uuid.UUID
	operator string
	limits   Limits

	product  *catalog.Product
	sizes    []catalog.SizeAssignment
	included []catalog.IncludedIngredient
	extras   []catalog.ExtraIngredient
	missing  missingSections

	state        enums.SessionState
	selectedSize *catalog.SizeAssignment
	added        []pricing.SelectedExtra
	removed      map[uuid.UUID]struct{}
	quantity     int
	note         string

	createdAt time.Time
	updatedAt time.Time
}

// NewMachine starts a session over one product's catalog sections.
// When the product forbids size selection the machine advances straight
// to Customizing with an implicit default size (multiplier 1.0). When a
// default size assignment exists it is preselected.
func NewMachine(id uuid.UUID, operatorID string, product *catalog.Product, sizes []catalog.SizeAssignment, included []catalog.IncludedIngredient, extras []catalog.ExtraIngredient, limits Limits) (*Machine, error) {
	if product == nil {
		return nil, errors.New(errors.CodeValidation, "product is required")
	}
	if limits.MaxNoteLen <= 0 {
		limits.MaxNoteLen = DefaultLimits.MaxNoteLen
	}
	if limits.MaxQuantity <= 0 {
		limits.MaxQuantity = DefaultLimits.MaxQuantity
	}

	now := time.Now().UTC()
	m := &Machine{
		id:        id,
		operator:  operatorID,
		limits:    limits,
		product:   product,
		sizes:     sizes,
		included:  included,
		extras:    extras,
		state:     enums.SessionStateIdle,
		removed:   make(map[uuid.UUID]struct{}),
		quantity:  1,
		createdAt: now,
		updatedAt: now,
	}

	if !product.AllowSizeSelection {
		m.state = enums.SessionStateCustomizing
		return m, nil
	}
	for i := range sizes {
		if sizes[i].IsDefault {
			m.selectedSize = &sizes[i]
			m.state = enums.SessionStateSizeSelected
			break
		}
	}
	return m, nil
}

// ID returns the session id.
func (m *Machine) ID() uuid.UUID { return m.id }

// OperatorID returns the operator who opened the session.
func (m *Machine) OperatorID() string { return m.operator }

// State returns the current lifecycle state.
func (m *Machine) State() enums.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Product returns the session's subject.
func (m *Machine) Product() *catalog.Product { return m.product }

// Sizes returns the product's size assignments.
func (m *Machine) Sizes() []catalog.SizeAssignment { return m.sizes }

// IncludedIngredients returns the removable base ingredients.
func (m *Machine) IncludedIngredients() []catalog.IncludedIngredient { return m.included }

// SelectedSize returns the chosen size assignment, nil before selection
// or for products without size selection.
func (m *Machine) SelectedSize() *catalog.SizeAssignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.selectedSize
}

// SelectedSizeID returns the chosen size's id, uuid.Nil when implicit.
func (m *Machine) SelectedSizeID() uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentSizeID()
}

// Quantity returns the current line quantity.
func (m *Machine) Quantity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quantity
}

// Note returns the normalized note text.
func (m *Machine) Note() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.note
}

// UpdatedAt returns the time of the last mutation, for idle pruning.
func (m *Machine) UpdatedAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updatedAt
}

// AddedExtras returns the selected extras in selection order.
func (m *Machine) AddedExtras() []pricing.SelectedExtra {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]pricing.SelectedExtra, len(m.added))
	copy(out, m.added)
	return out
}

// RemovedIngredientIDs returns the removed included-ingredient ids.
func (m *Machine) RemovedIngredientIDs() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uuid.UUID, 0, len(m.removed))
	for _, ing := range m.included {
		if _, ok := m.removed[ing.IngredientID]; ok {
			out = append(out, ing.IngredientID)
		}
	}
	return out
}

func (m *Machine) ensureMutable() error {
	if m.state.IsTerminal() {
		return errors.New(errors.CodeStateConflict, "session is already "+m.state.String())
	}
	return nil
}

func (m *Machine) touch() {
	m.updatedAt = time.Now().UTC()
	// Any selection change invalidates a prior Validated verdict.
	if m.state == enums.SessionStateValidated {
		m.state = enums.SessionStateCustomizing
	}
}

// SelectSize chooses one of the product's size assignments. Prices of
// already-added extras are re-resolved against the new size.
func (m *Machine) SelectSize(sizeID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	if !m.product.AllowSizeSelection {
		return errors.New(errors.CodeValidation, "product does not allow size selection")
	}
	if m.missing.sizes {
		return errors.New(errors.CodeDependency, "size assignments are not available yet")
	}
	for i := range m.sizes {
		if m.sizes[i].SizeID == sizeID {
			m.selectedSize = &m.sizes[i]
			if m.state == enums.SessionStateIdle {
				m.state = enums.SessionStateSizeSelected
			}
			m.repriceExtras()
			m.touch()
			return nil
		}
	}
	return errors.New(errors.CodeNotFound, "size is not assigned to this product")
}

func (m *Machine) repriceExtras() {
	sizeID := m.currentSizeID()
	for i := range m.added {
		if extra := m.findExtra(m.added[i].IngredientID); extra != nil {
			m.added[i].UnitPrice = pricing.ExtraIngredientPrice(extra, sizeID)
		}
	}
}

func (m *Machine) currentSizeID() uuid.UUID {
	if m.selectedSize == nil {
		return uuid.Nil
	}
	return m.selectedSize.SizeID
}

func (m *Machine) findExtra(ingredientID uuid.UUID) *catalog.ExtraIngredient {
	for i := range m.extras {
		if m.extras[i].IngredientID == ingredientID {
			return &m.extras[i]
		}
	}
	return nil
}

func (m *Machine) findIncluded(ingredientID uuid.UUID) *catalog.IncludedIngredient {
	for i := range m.included {
		if m.included[i].IngredientID == ingredientID {
			return &m.included[i]
		}
	}
	return nil
}

// ToggleIncluded flips an included ingredient's removal flag. Toggling
// twice restores the original state.
func (m *Machine) ToggleIncluded(ingredientID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	if !m.product.AllowIngredients {
		return errors.New(errors.CodeValidation, "product does not allow ingredient customization")
	}
	if m.missing.included {
		return errors.New(errors.CodeDependency, "included ingredients are not available yet")
	}
	if m.findIncluded(ingredientID) == nil {
		return errors.New(errors.CodeNotFound, "ingredient is not included in this product")
	}
	if _, ok := m.removed[ingredientID]; ok {
		delete(m.removed, ingredientID)
	} else {
		m.removed[ingredientID] = struct{}{}
	}
	m.enterCustomizing()
	m.touch()
	return nil
}

// ToggleExtra adds or removes a priced extra. Quantity is forced to 1
// on add; the unit price is resolved against the current size.
func (m *Machine) ToggleExtra(ingredientID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	if !m.product.AllowIngredients {
		return errors.New(errors.CodeValidation, "product does not allow ingredient customization")
	}
	for i := range m.added {
		if m.added[i].IngredientID == ingredientID {
			m.added = append(m.added[:i], m.added[i+1:]...)
			m.enterCustomizing()
			m.touch()
			return nil
		}
	}
	if m.missing.extras {
		return errors.New(errors.CodeDependency, "extra ingredients are not available yet")
	}
	extra := m.findExtra(ingredientID)
	if extra == nil {
		return errors.New(errors.CodeNotFound, "ingredient is not offered as an extra for this product")
	}
	m.added = append(m.added, pricing.SelectedExtra{
		IngredientID: extra.IngredientID,
		Name:         extra.Name,
		UnitPrice:    pricing.ExtraIngredientPrice(extra, m.currentSizeID()),
		Quantity:     1,
	})
	m.enterCustomizing()
	m.touch()
	return nil
}

func (m *Machine) enterCustomizing() {
	if m.state == enums.SessionStateIdle || m.state == enums.SessionStateSizeSelected {
		m.state = enums.SessionStateCustomizing
	}
}

// AdjustQuantity increments or decrements the line quantity. The floor
// is 1; decrementing below it is a no-op.
func (m *Machine) AdjustQuantity(op enums.QuantityOp) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	switch op {
	case enums.QuantityOpIncrement:
		if m.quantity < m.limits.MaxQuantity {
			m.quantity++
		}
	case enums.QuantityOpDecrement:
		if m.quantity > 1 {
			m.quantity--
		}
	default:
		return errors.New(errors.CodeValidation, "unknown quantity operation")
	}
	m.enterCustomizing()
	m.touch()
	return nil
}

// SetNote stores the operator note, trimmed. An empty note after
// trimming means "no note".
func (m *Machine) SetNote(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(text)
	if len([]rune(trimmed)) > m.limits.MaxNoteLen {
		return errors.New(errors.CodeValidation, "note exceeds maximum length")
	}
	m.note = trimmed
	m.enterCustomizing()
	m.touch()
	return nil
}

// Validate runs the local commit preconditions and advances to
// Validated. Failures are user-correctable and leave the state alone.
func (m *Machine) Validate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.ensureMutable(); err != nil {
		return err
	}
	if m.product.AllowSizeSelection && m.missing.sizes {
		return errors.New(errors.CodeDependency, "size assignments are not available yet")
	}
	if m.product.AllowSizeSelection && m.selectedSize == nil {
		return errors.New(errors.CodeValidation, "a size must be selected before committing")
	}
	if m.quantity < 1 {
		return errors.New(errors.CodeValidation, "quantity must be at least 1")
	}
	m.state = enums.SessionStateValidated
	m.updatedAt = time.Now().UTC()
	return nil
}

// Cancel discards the session.
func (m *Machine) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.IsTerminal() {
		m.state = enums.SessionStateCancelled
		m.updatedAt = time.Now().UTC()
	}
}

func (m *Machine) markCommitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = enums.SessionStateCommitted
	m.updatedAt = time.Now().UTC()
}

// LineTotal prices the session as a simple line, freshly derived from
// the current selection.
func (m *Machine) LineTotal() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pricing.LineTotal(m.product, m.added, m.selectedSize, m.quantity)
}

// HalfPrice is this session's contribution to a split line.
func (m *Machine) HalfPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return pricing.HalfPrice(m.product, m.added, m.selectedSize)
}

func (m *Machine) sectionsMissing() missingSections {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.missing
}

// restoreSizes installs a late-loaded sizes section. The default size is
// preselected only when the operator has not progressed past Idle.
func (m *Machine) restoreSizes(sizes []catalog.SizeAssignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sizes = sizes
	m.missing.sizes = false
	if m.state != enums.SessionStateIdle || m.selectedSize != nil {
		return
	}
	for i := range m.sizes {
		if m.sizes[i].IsDefault {
			m.selectedSize = &m.sizes[i]
			m.state = enums.SessionStateSizeSelected
			return
		}
	}
}

func (m *Machine) restoreIncluded(included []catalog.IncludedIngredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.included = included
	m.missing.included = false
}

func (m *Machine) restoreExtras(extras []catalog.ExtraIngredient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extras = extras
	m.missing.extras = false
}

// halfPriceWithSize prices this session's half against an explicit size
// assignment, used for the second half of a split where the size is
// resolved from the first half's choice.
func (m *Machine) halfPriceWithSize(size *catalog.SizeAssignment) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	selected := make([]pricing.SelectedExtra, len(m.added))
	copy(selected, m.added)
	var sizeID uuid.UUID
	if size != nil {
		sizeID = size.SizeID
	}
	for i := range selected {
		if extra := m.findExtra(selected[i].IngredientID); extra != nil {
			selected[i].UnitPrice = pricing.ExtraIngredientPrice(extra, sizeID)
		}
	}
	return pricing.HalfPrice(m.product, selected, size)
}
