// Package split decides whether two half-products may share one cart line.
package split

import (
	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
)

// IsSplitAllowed is the single gate for offering or committing a split:
// the product's category must allow splits and the chosen size assignment
// must exist and allow them. It is evaluated when the split action is
// offered and again at commit time.
func IsSplitAllowed(product *catalog.Product, size *catalog.SizeAssignment) bool {
	if product == nil || size == nil {
		return false
	}
	return product.CategoryAllowsSplit && size.AllowsSplit
}

// ResolveSecondHalfSize matches the first half's chosen size against the
// second product's assignments. When the second product has no assignment
// for that size, it returns a neutral synthetic assignment (multiplier 1.0)
// so the pair can still be priced. Callers that want strictness can check
// the returned bool, which reports whether a real match was found.
func ResolveSecondHalfSize(sizes []catalog.SizeAssignment, sizeID uuid.UUID) (catalog.SizeAssignment, bool) {
	for i := range sizes {
		if sizes[i].SizeID == sizeID {
			return sizes[i], true
		}
	}
	return catalog.SizeAssignment{SizeID: sizeID, PriceMultiplier: 1.0}, false
}
