package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItemIncludedIngredient bundles an ingredient into the base product.
// Included ingredients are removable but never priced.
type MenuItemIncludedIngredient struct {
	ID           uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID   uuid.UUID   `gorm:"column:menu_item_id;type:uuid;not null"`
	IngredientID uuid.UUID   `gorm:"column:ingredient_id;type:uuid;not null"`
	Position     int         `gorm:"column:position;not null;default:0"`
	Ingredient   *Ingredient `gorm:"foreignKey:IngredientID"`
	CreatedAt    time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (MenuItemIncludedIngredient) TableName() string {
	return "menu_item_included_ingredients"
}

// MenuItemExtraIngredient offers an ingredient as a priced addition.
// Per-size pricing lives in ingredient_size_prices and wins over DefaultPrice.
type MenuItemExtraIngredient struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID   uuid.UUID       `gorm:"column:menu_item_id;type:uuid;not null"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null"`
	DefaultPrice decimal.Decimal `gorm:"column:default_price;type:numeric(10,2);not null"`
	Position     int             `gorm:"column:position;not null;default:0"`
	Ingredient   *Ingredient     `gorm:"foreignKey:IngredientID"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (MenuItemExtraIngredient) TableName() string {
	return "menu_item_extra_ingredients"
}

// MenuItemRecommendedIngredient orders the best-effort suggestion list.
type MenuItemRecommendedIngredient struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID   uuid.UUID `gorm:"column:menu_item_id;type:uuid;not null"`
	IngredientID uuid.UUID `gorm:"column:ingredient_id;type:uuid;not null"`
	Position     int       `gorm:"column:position;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName keeps the legacy catalog table name.
func (MenuItemRecommendedIngredient) TableName() string {
	return "menu_item_recommended_ingredients"
}
