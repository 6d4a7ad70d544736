package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ingredient is the master record shared by included and extra assignments.
type Ingredient struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (Ingredient) TableName() string {
	return "ingredients"
}

// IngredientSizePrice overrides an extra ingredient's price for one size.
type IngredientSizePrice struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IngredientID uuid.UUID       `gorm:"column:ingredient_id;type:uuid;not null"`
	SizeID       uuid.UUID       `gorm:"column:size_id;type:uuid;not null"`
	Price        decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (IngredientSizePrice) TableName() string {
	return "ingredient_size_prices"
}
