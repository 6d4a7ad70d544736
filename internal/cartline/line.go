// Package cartline defines the immutable line item a committed session
// emits and the hand-off to the external cart/order store.
package cartline

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vittoria-dev/menu-engine/internal/pricing"
)

// Item is one purchasable cart line. A split item carries exactly two
// product references and still counts as a single unit.
type Item struct {
	ID                   uuid.UUID               `json:"id"`
	ProductIDs           []uuid.UUID             `json:"productIds"`
	SizeID               uuid.UUID               `json:"sizeId"`
	AddedIngredients     []pricing.SelectedExtra `json:"addedIngredients"`
	RemovedIngredientIDs []uuid.UUID             `json:"removedIngredientIds"`
	Quantity             int                     `json:"quantity"`
	Note                 string                  `json:"note,omitempty"`
	ComputedTotal        decimal.Decimal         `json:"computedTotal"`
	IsSplit              bool                    `json:"isSplit"`
	CommittedAt          time.Time               `json:"committedAt"`
	OperatorID           string                  `json:"operatorId,omitempty"`
}
