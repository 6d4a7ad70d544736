// Package pricing holds the pure money math for customized menu lines.
// Every function is total: missing size or price data resolves to neutral
// defaults (multiplier 1.0, price 0) so a line can always be priced.
package pricing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
)

var two = decimal.NewFromInt(2)

// SelectedExtra is one extra the operator added to a line. Quantity is
// forced to 1 by current policy but the totals generalize over it.
type SelectedExtra struct {
	IngredientID uuid.UUID       `json:"ingredientId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Quantity     int             `json:"quantity"`
}

// EffectiveUnitPrice resolves one product/size pair to a unit price.
// An absolute override on the size assignment wins over the multiplier.
// A nil assignment prices as the bare product (multiplier 1.0).
func EffectiveUnitPrice(product *catalog.Product, size *catalog.SizeAssignment) decimal.Decimal {
	if product == nil {
		return decimal.Zero
	}
	if size == nil {
		return product.BasePrice
	}
	if size.PriceOverride != nil {
		return *size.PriceOverride
	}
	multiplier := size.PriceMultiplier
	if multiplier <= 0 {
		multiplier = 1.0
	}
	return product.BasePrice.Mul(decimal.NewFromFloat(multiplier))
}

// ExtraIngredientPrice returns the size-specific price when the extra has
// one for sizeID, else its default price.
func ExtraIngredientPrice(extra *catalog.ExtraIngredient, sizeID uuid.UUID) decimal.Decimal {
	if extra == nil {
		return decimal.Zero
	}
	if price, ok := extra.SizePrices[sizeID]; ok {
		return price
	}
	return extra.DefaultPrice
}

// ExtrasTotal sums the selected extras. Prices were resolved at selection
// time so the sum only applies quantities.
func ExtrasTotal(selected []SelectedExtra) decimal.Decimal {
	total := decimal.Zero
	for _, extra := range selected {
		qty := extra.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(extra.UnitPrice.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// LineTotal prices a simple (non-split) line.
func LineTotal(product *catalog.Product, selected []SelectedExtra, size *catalog.SizeAssignment, quantity int) decimal.Decimal {
	if quantity < 1 {
		quantity = 1
	}
	unit := EffectiveUnitPrice(product, size).Add(ExtrasTotal(selected))
	return unit.Mul(decimal.NewFromInt(int64(quantity)))
}

// HalfPrice is one product's contribution to a split line, before the
// combined round-up step.
func HalfPrice(product *catalog.Product, selected []SelectedExtra, size *catalog.SizeAssignment) decimal.Decimal {
	return EffectiveUnitPrice(product, size).Add(ExtrasTotal(selected)).Div(two)
}

// SplitTotal combines two half-prices and rounds up to the next half-euro.
func SplitTotal(half1, half2 decimal.Decimal) decimal.Decimal {
	return RoundUpToHalf(half1.Add(half2))
}

// RoundUpToHalf rounds x up to the next 0.5 increment: ceil(x*2)/2.
// The merchant is never undercharged by fractional-cent combinations.
func RoundUpToHalf(x decimal.Decimal) decimal.Decimal {
	return x.Mul(two).Ceil().Div(two)
}
