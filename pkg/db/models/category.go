package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups menu items and carries the split capability flag.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	AllowsSplit bool      `gorm:"column:allows_split;not null;default:false"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the legacy catalog table name.
func (Category) TableName() string {
	return "categorie_menu"
}
