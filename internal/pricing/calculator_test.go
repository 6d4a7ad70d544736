package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestEffectiveUnitPrice(t *testing.T) {
	override := dec("8.00")
	product := &catalog.Product{BasePrice: dec("10.00")}

	tests := []struct {
		name string
		size *catalog.SizeAssignment
		want decimal.Decimal
	}{
		{
			name: "multiplier applies over base price",
			size: &catalog.SizeAssignment{PriceMultiplier: 1.2},
			want: dec("12.00"),
		},
		{
			name: "override wins over multiplier",
			size: &catalog.SizeAssignment{PriceMultiplier: 1.5, PriceOverride: &override},
			want: dec("8.00"),
		},
		{
			name: "nil assignment prices the bare product",
			size: nil,
			want: dec("10.00"),
		},
		{
			name: "zero multiplier falls back to neutral 1.0",
			size: &catalog.SizeAssignment{PriceMultiplier: 0},
			want: dec("10.00"),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := EffectiveUnitPrice(product, tc.size)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestEffectiveUnitPriceNilProduct(t *testing.T) {
	assert.True(t, EffectiveUnitPrice(nil, nil).IsZero())
}

func TestExtraIngredientPriceSizeTableFallback(t *testing.T) {
	largeID := uuid.New()
	smallID := uuid.New()
	extra := &catalog.ExtraIngredient{
		DefaultPrice: dec("1.50"),
		SizePrices:   map[uuid.UUID]decimal.Decimal{largeID: dec("2.00")},
	}

	assert.True(t, ExtraIngredientPrice(extra, largeID).Equal(dec("2.00")))
	assert.True(t, ExtraIngredientPrice(extra, smallID).Equal(dec("1.50")))
	assert.True(t, ExtraIngredientPrice(nil, smallID).IsZero())
}

func TestLineTotalScenarioBaseTimesMultiplierPlusExtra(t *testing.T) {
	product := &catalog.Product{BasePrice: dec("10.00")}
	size := &catalog.SizeAssignment{PriceMultiplier: 1.2}
	selected := []SelectedExtra{{IngredientID: uuid.New(), UnitPrice: dec("1.50"), Quantity: 1}}

	unit := EffectiveUnitPrice(product, size)
	require.True(t, unit.Equal(dec("12.00")), "unit was %s", unit)
	extras := ExtrasTotal(selected)
	require.True(t, extras.Equal(dec("1.50")))

	total := LineTotal(product, selected, size, 2)
	assert.True(t, total.Equal(dec("27.00")), "line total was %s", total)
}

func TestLineTotalNeverBelowUnitTimesQuantity(t *testing.T) {
	product := &catalog.Product{BasePrice: dec("7.30")}
	size := &catalog.SizeAssignment{PriceMultiplier: 1.4}
	extras := []SelectedExtra{
		{UnitPrice: dec("0.50"), Quantity: 1},
		{UnitPrice: dec("1.20"), Quantity: 1},
	}

	for qty := 1; qty <= 5; qty++ {
		total := LineTotal(product, extras, size, qty)
		floor := EffectiveUnitPrice(product, size).Mul(decimal.NewFromInt(int64(qty)))
		assert.True(t, total.GreaterThanOrEqual(floor), "qty %d: total %s below %s", qty, total, floor)
	}
}

func TestLineTotalQuantityFloor(t *testing.T) {
	product := &catalog.Product{BasePrice: dec("6.50")}
	assert.True(t, LineTotal(product, nil, nil, 0).Equal(dec("6.50")))
	assert.True(t, LineTotal(product, nil, nil, -3).Equal(dec("6.50")))
}

func TestSplitTotalRoundsUpToHalf(t *testing.T) {
	tests := []struct {
		name         string
		half1, half2 decimal.Decimal
		want         decimal.Decimal
	}{
		{"fractional sum rounds up", dec("6.25"), dec("5.10"), dec("11.50")},
		{"exact half stays put", dec("6.25"), dec("5.25"), dec("11.50")},
		{"exact euro stays put", dec("5.00"), dec("6.00"), dec("11.00")},
		{"one cent over rounds a full step", dec("5.00"), dec("6.01"), dec("11.50")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitTotal(tc.half1, tc.half2)
			assert.True(t, got.Equal(tc.want), "got %s want %s", got, tc.want)
		})
	}
}

func TestSplitTotalProperties(t *testing.T) {
	halves := []decimal.Decimal{
		dec("3.33"), dec("4.17"), dec("5.10"), dec("6.25"), dec("0.01"), dec("7.00"),
	}
	half := dec("0.5")
	for _, h1 := range halves {
		for _, h2 := range halves {
			total := SplitTotal(h1, h2)
			sum := h1.Add(h2)
			assert.True(t, total.GreaterThanOrEqual(sum), "total %s below raw sum %s", total, sum)
			assert.True(t, total.Mod(half).IsZero(), "total %s is not a multiple of 0.5", total)
		}
	}
}

func TestHalfPriceIsHalfOfUnitPlusExtras(t *testing.T) {
	product := &catalog.Product{BasePrice: dec("10.00")}
	size := &catalog.SizeAssignment{PriceMultiplier: 1.0}
	selected := []SelectedExtra{{UnitPrice: dec("2.50"), Quantity: 1}}

	half := HalfPrice(product, selected, size)
	assert.True(t, half.Equal(dec("6.25")), "half was %s", half)
}
