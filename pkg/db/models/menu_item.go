package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuItem is the customizable product the engine prices.
type MenuItem struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CategoryID         uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	Name               string          `gorm:"column:name;not null"`
	Description        *string         `gorm:"column:description"`
	BasePrice          decimal.Decimal `gorm:"column:base_price;type:numeric(10,2);not null"`
	AllowSizeSelection bool            `gorm:"column:allow_size_selection;not null;default:false"`
	AllowIngredients   bool            `gorm:"column:allow_ingredients;not null;default:true"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	Category           *Category       `gorm:"foreignKey:CategoryID"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (MenuItem) TableName() string {
	return "menu_items"
}

// MenuItemSize assigns one size option to a menu item, carrying either a
// multiplier over the base price or an absolute override.
type MenuItemSize struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MenuItemID      uuid.UUID        `gorm:"column:menu_item_id;type:uuid;not null"`
	SizeID          uuid.UUID        `gorm:"column:size_id;type:uuid;not null"`
	PriceMultiplier float64          `gorm:"column:price_multiplier;type:numeric(6,3);not null;default:1.0"`
	PriceOverride   *decimal.Decimal `gorm:"column:price_override;type:numeric(10,2)"`
	IsDefault       bool             `gorm:"column:is_default;not null;default:false"`
	AllowsSplit     bool             `gorm:"column:allows_split;not null;default:false"`
	Position        int              `gorm:"column:position;not null;default:0"`
	Size            *Size            `gorm:"foreignKey:SizeID"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (MenuItemSize) TableName() string {
	return "menu_item_sizes"
}
