package catalog

import (
	"context"
	goerrors "errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vittoria-dev/menu-engine/pkg/errors"
	"github.com/vittoria-dev/menu-engine/pkg/db/models"
)

// Repository reads catalog sections straight from Postgres.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a catalog repository over the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetProduct loads one active menu item with its category split flag.
func (r *Repository) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ? AND is_active = ?", productID, true).
		First(&item).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "menu item not found")
		}
		return nil, errors.Wrap(errors.CodeDependency, err, "loading menu item")
	}
	product := productFromModel(&item)
	return &product, nil
}

// GetSizes returns the product's size assignments ordered by position.
func (r *Repository) GetSizes(ctx context.Context, productID uuid.UUID) ([]SizeAssignment, error) {
	var rows []models.MenuItemSize
	err := r.db.WithContext(ctx).
		Preload("Size").
		Where("menu_item_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading menu item sizes")
	}
	out := make([]SizeAssignment, 0, len(rows))
	for i := range rows {
		out = append(out, sizeAssignmentFromModel(&rows[i]))
	}
	return out, nil
}

// GetIncludedIngredients returns the removable base ingredients in order.
func (r *Repository) GetIncludedIngredients(ctx context.Context, productID uuid.UUID) ([]IncludedIngredient, error) {
	var rows []models.MenuItemIncludedIngredient
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading included ingredients")
	}
	out := make([]IncludedIngredient, 0, len(rows))
	for i := range rows {
		out = append(out, includedFromModel(&rows[i]))
	}
	return out, nil
}

// GetExtraIngredients returns the priced additions in order, with any
// per-size price rows folded into each entry.
func (r *Repository) GetExtraIngredients(ctx context.Context, productID uuid.UUID) ([]ExtraIngredient, error) {
	var rows []models.MenuItemExtraIngredient
	err := r.db.WithContext(ctx).
		Preload("Ingredient").
		Where("menu_item_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading extra ingredients")
	}
	if len(rows) == 0 {
		return []ExtraIngredient{}, nil
	}

	ingredientIDs := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ingredientIDs = append(ingredientIDs, rows[i].IngredientID)
	}
	var sizePrices []models.IngredientSizePrice
	err = r.db.WithContext(ctx).
		Where("ingredient_id IN ?", ingredientIDs).
		Find(&sizePrices).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading ingredient size prices")
	}

	out := make([]ExtraIngredient, 0, len(rows))
	for i := range rows {
		out = append(out, extraFromModel(&rows[i], sizePrices))
	}
	return out, nil
}

// GetRecommendedIngredients returns the suggestion list. The list is
// best-effort for callers, so an empty slice is fine here.
func (r *Repository) GetRecommendedIngredients(ctx context.Context, productID uuid.UUID) ([]RecommendedIngredient, error) {
	var rows []models.MenuItemRecommendedIngredient
	err := r.db.WithContext(ctx).
		Where("menu_item_id = ?", productID).
		Order("position ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading recommended ingredients")
	}
	if len(rows) == 0 {
		return []RecommendedIngredient{}, nil
	}

	ingredientIDs := make([]uuid.UUID, 0, len(rows))
	for i := range rows {
		ingredientIDs = append(ingredientIDs, rows[i].IngredientID)
	}
	var ingredients []models.Ingredient
	err = r.db.WithContext(ctx).
		Where("id IN ?", ingredientIDs).
		Find(&ingredients).Error
	if err != nil {
		return nil, errors.Wrap(errors.CodeDependency, err, "loading ingredient names")
	}
	names := make(map[uuid.UUID]string, len(ingredients))
	for i := range ingredients {
		names[ingredients[i].ID] = ingredients[i].Name
	}

	out := make([]RecommendedIngredient, 0, len(rows))
	for i := range rows {
		out = append(out, RecommendedIngredient{
			IngredientID: rows[i].IngredientID,
			Name:         names[rows[i].IngredientID],
			Position:     rows[i].Position,
		})
	}
	return out, nil
}
