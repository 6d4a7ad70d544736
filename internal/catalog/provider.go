package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Provider serves the catalog sections a customization session reads.
// Implementations must return stable, position-ordered slices so selection
// state can be replayed deterministically.
type Provider interface {
	GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error)
	GetSizes(ctx context.Context, productID uuid.UUID) ([]SizeAssignment, error)
	GetIncludedIngredients(ctx context.Context, productID uuid.UUID) ([]IncludedIngredient, error)
	GetExtraIngredients(ctx context.Context, productID uuid.UUID) ([]ExtraIngredient, error)
	GetRecommendedIngredients(ctx context.Context, productID uuid.UUID) ([]RecommendedIngredient, error)
}

// Invalidator drops cached catalog sections after an admin-side change.
type Invalidator interface {
	Invalidate(ctx context.Context, productID uuid.UUID) error
}
