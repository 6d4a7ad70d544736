package catalog

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vittoria-dev/menu-engine/pkg/db/models"
)

// Product is the slice of a menu item the engine prices and customizes.
type Product struct {
	ID                 uuid.UUID       `json:"id"`
	Name               string          `json:"name"`
	CategoryID         uuid.UUID       `json:"categoryId"`
	BasePrice          decimal.Decimal `json:"basePrice"`
	AllowSizeSelection bool            `json:"allowSizeSelection"`
	AllowIngredients   bool            `json:"allowIngredients"`
	CategoryAllowsSplit bool           `json:"categoryAllowsSplit"`
}

// SizeAssignment is one size option of a product with its pricing knobs.
type SizeAssignment struct {
	ID              uuid.UUID        `json:"id"`
	SizeID          uuid.UUID        `json:"sizeId"`
	Name            string           `json:"name"`
	PriceMultiplier float64          `json:"priceMultiplier"`
	PriceOverride   *decimal.Decimal `json:"priceOverride,omitempty"`
	IsDefault       bool             `json:"isDefault"`
	AllowsSplit     bool             `json:"allowsSplit"`
	Position        int              `json:"position"`
}

// IncludedIngredient is removable but never priced.
type IncludedIngredient struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Position     int       `json:"position"`
}

// ExtraIngredient is addable and priced, with optional per-size prices.
type ExtraIngredient struct {
	IngredientID uuid.UUID                      `json:"ingredientId"`
	Name         string                         `json:"name"`
	DefaultPrice decimal.Decimal                `json:"defaultPrice"`
	SizePrices   map[uuid.UUID]decimal.Decimal  `json:"sizePrices,omitempty"`
	Position     int                            `json:"position"`
}

// RecommendedIngredient orders the suggestion strip on the terminal.
type RecommendedIngredient struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	Position     int       `json:"position"`
}

func productFromModel(item *models.MenuItem) Product {
	p := Product{
		ID:                 item.ID,
		Name:               item.Name,
		CategoryID:         item.CategoryID,
		BasePrice:          item.BasePrice,
		AllowSizeSelection: item.AllowSizeSelection,
		AllowIngredients:   item.AllowIngredients,
	}
	if item.Category != nil {
		p.CategoryAllowsSplit = item.Category.AllowsSplit
	}
	return p
}

func sizeAssignmentFromModel(row *models.MenuItemSize) SizeAssignment {
	a := SizeAssignment{
		ID:              row.ID,
		SizeID:          row.SizeID,
		PriceMultiplier: row.PriceMultiplier,
		PriceOverride:   row.PriceOverride,
		IsDefault:       row.IsDefault,
		AllowsSplit:     row.AllowsSplit,
		Position:        row.Position,
	}
	if row.Size != nil {
		a.Name = row.Size.Name
	}
	return a
}

func includedFromModel(row *models.MenuItemIncludedIngredient) IncludedIngredient {
	ing := IncludedIngredient{
		IngredientID: row.IngredientID,
		Position:     row.Position,
	}
	if row.Ingredient != nil {
		ing.Name = row.Ingredient.Name
	}
	return ing
}

func extraFromModel(row *models.MenuItemExtraIngredient, sizePrices []models.IngredientSizePrice) ExtraIngredient {
	ing := ExtraIngredient{
		IngredientID: row.IngredientID,
		DefaultPrice: row.DefaultPrice,
		Position:     row.Position,
	}
	if row.Ingredient != nil {
		ing.Name = row.Ingredient.Name
	}
	for _, sp := range sizePrices {
		if sp.IngredientID != row.IngredientID {
			continue
		}
		if ing.SizePrices == nil {
			ing.SizePrices = make(map[uuid.UUID]decimal.Decimal)
		}
		ing.SizePrices[sp.SizeID] = sp.Price
	}
	return ing
}
