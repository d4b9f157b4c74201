package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingGroup clusters products that share shipping methods.
type ShippingGroup struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	StoreID   uuid.UUID `gorm:"column:store_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// ShippingMethod is a store-defined delivery option with a per-unit cost.
type ShippingMethod struct {
	ID          int64           `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID     uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	Name        string          `gorm:"column:name;not null"`
	CostPerUnit decimal.Decimal `gorm:"column:cost_per_unit;type:numeric(12,2);not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// ProductShippingMethod assigns a method directly to a product.
type ProductShippingMethod struct {
	ProductID        uuid.UUID `gorm:"column:product_id;type:uuid;primaryKey"`
	ShippingMethodID int64     `gorm:"column:shipping_method_id;primaryKey"`
}

// GroupShippingMethod assigns a method to every product in a shipping group.
type GroupShippingMethod struct {
	ShippingGroupID  uuid.UUID `gorm:"column:shipping_group_id;type:uuid;primaryKey"`
	ShippingMethodID int64     `gorm:"column:shipping_method_id;primaryKey"`
}
