package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStoreTotal is the persisted per-store breakdown of one order.
type OrderStoreTotal struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex:order_store_totals_order_store_key"`
	StoreID   uuid.UUID       `gorm:"column:store_id;type:uuid;not null;uniqueIndex:order_store_totals_order_store_key"`
	Subtotal  decimal.Decimal `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount  decimal.Decimal `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Shipping  decimal.Decimal `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
}
