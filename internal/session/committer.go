package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/vittoria-dev/menu-engine/internal/availability"
	"github.com/vittoria-dev/menu-engine/internal/cartline"
	"github.com/vittoria-dev/menu-engine/internal/pricing"
	"github.com/vittoria-dev/menu-engine/internal/split"
	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/logger"
	"github.com/vittoria-dev/menu-engine/pkg/metrics"
)

// UnavailableDetails tells the caller which product failed the gate and
// that its cached availability verdict must be dropped.
type UnavailableDetails struct {
	ProductID                    uuid.UUID `json:"productId"`
	ProductName                  string    `json:"productName"`
	InvalidateCachedAvailability bool      `json:"invalidateCachedAvailability"`
}

// Committer turns validated sessions into immutable cart lines. The
// availability gate runs once per product involved, fail-closed.
type Committer struct {
	gate      availability.Gate
	publisher cartline.Publisher
	metrics   *metrics.EngineMetrics
	log       *logger.Logger
}

// NewCommitter wires the commit path.
func NewCommitter(gate availability.Gate, publisher cartline.Publisher, m *metrics.EngineMetrics, log *logger.Logger) *Committer {
	if publisher == nil {
		publisher = cartline.NoopPublisher{}
	}
	return &Committer{gate: gate, publisher: publisher, metrics: m, log: log}
}

// Commit finalizes a single-product session.
func (c *Committer) Commit(ctx context.Context, m *Machine) (*cartline.Item, error) {
	if err := m.Validate(); err != nil {
		c.metrics.IncCommit("validation_failed")
		return nil, err
	}

	if !c.gate.Check(ctx, m.product.ID) {
		m.Cancel()
		c.metrics.IncCommit("unavailable")
		return nil, c.unavailable(m)
	}

	item := &cartline.Item{
		ID:                   uuid.New(),
		ProductIDs:           []uuid.UUID{m.product.ID},
		SizeID:               m.SelectedSizeID(),
		AddedIngredients:     m.AddedExtras(),
		RemovedIngredientIDs: m.RemovedIngredientIDs(),
		Quantity:             m.Quantity(),
		Note:                 m.Note(),
		ComputedTotal:        m.LineTotal().Round(2),
		IsSplit:              false,
		CommittedAt:          time.Now().UTC(),
		OperatorID:           m.operator,
	}
	if err := c.publish(ctx, item); err != nil {
		return nil, err
	}
	m.markCommitted()
	c.metrics.IncCommit("committed")
	return item, nil
}

// CommitSplit finalizes two sessions as one purchasable split line. The
// split gate is re-checked at commit, the second half's size is resolved
// from the first half's choice, and the two availability checks run
// independently with their failures aggregated.
func (c *Committer) CommitSplit(ctx context.Context, first, second *Machine) (*cartline.Item, error) {
	if first.product.ID == second.product.ID {
		c.metrics.IncCommit("validation_failed")
		return nil, errors.New(errors.CodeValidation, "a split needs two distinct products")
	}
	if err := first.Validate(); err != nil {
		c.metrics.IncCommit("validation_failed")
		return nil, err
	}
	if err := second.Validate(); err != nil {
		c.metrics.IncCommit("validation_failed")
		return nil, err
	}
	// A split is one purchasable unit; both halves must carry the
	// same quantity.
	if first.Quantity() != second.Quantity() {
		c.metrics.IncCommit("validation_failed")
		return nil, errors.New(errors.CodeValidation, "split halves must carry the same quantity")
	}

	if !split.IsSplitAllowed(first.product, first.SelectedSize()) {
		c.metrics.IncCommit("split_rejected")
		return nil, errors.New(errors.CodeValidation, "this category/size pairing does not allow a split")
	}
	if !second.product.CategoryAllowsSplit {
		c.metrics.IncCommit("split_rejected")
		return nil, errors.New(errors.CodeValidation, "the second product's category does not allow splits")
	}
	// A missing assignment on the second product does not reject the
	// pair; it prices at multiplier 1.0.
	secondSize, matched := split.ResolveSecondHalfSize(second.sizes, first.SelectedSizeID())
	if !matched && c.log != nil {
		c.log.Warn(c.log.WithProductID(ctx, second.product.ID.String()), "second half has no assignment for the shared size, pricing at multiplier 1.0")
	}

	var unavailableErr error
	if !c.gate.Check(ctx, first.product.ID) {
		unavailableErr = multierr.Append(unavailableErr, c.unavailable(first))
	}
	if !c.gate.Check(ctx, second.product.ID) {
		unavailableErr = multierr.Append(unavailableErr, c.unavailable(second))
	}
	if unavailableErr != nil {
		first.Cancel()
		second.Cancel()
		c.metrics.IncCommit("unavailable")
		return nil, unavailableErr
	}

	halfFirst := first.HalfPrice()
	halfSecond := second.halfPriceWithSize(&secondSize)
	total := pricing.SplitTotal(halfFirst, halfSecond)

	item := &cartline.Item{
		ID:                   uuid.New(),
		ProductIDs:           []uuid.UUID{first.product.ID, second.product.ID},
		SizeID:               first.SelectedSizeID(),
		AddedIngredients:     append(first.AddedExtras(), second.AddedExtras()...),
		RemovedIngredientIDs: append(first.RemovedIngredientIDs(), second.RemovedIngredientIDs()...),
		Quantity:             first.Quantity(),
		Note:                 joinNotes(first.Note(), second.Note()),
		ComputedTotal:        total.Mul(decimal.NewFromInt(int64(first.Quantity()))).Round(2),
		IsSplit:              true,
		CommittedAt:          time.Now().UTC(),
		OperatorID:           first.operator,
	}
	if err := c.publish(ctx, item); err != nil {
		return nil, err
	}
	first.markCommitted()
	second.markCommitted()
	c.metrics.IncCommit("committed")
	return item, nil
}

func (c *Committer) publish(ctx context.Context, item *cartline.Item) error {
	if err := c.publisher.PublishCommitted(ctx, item); err != nil {
		if c.log != nil {
			c.log.Error(ctx, "handing cart line to order store failed", err)
		}
		c.metrics.IncCommit("publish_failed")
		return errors.Wrap(errors.CodeDependency, err, "handing the line to the order store failed")
	}
	return nil
}

func (c *Committer) unavailable(m *Machine) error {
	return errors.New(errors.CodeUnavailable, m.product.Name+" is not available right now").
		WithDetails(UnavailableDetails{
			ProductID:                    m.product.ID,
			ProductName:                  m.product.Name,
			InvalidateCachedAvailability: true,
		})
}

func joinNotes(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " / " + b
	}
}
