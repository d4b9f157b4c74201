package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots one cart line at order time. Prices and shipping
// costs are copied, never referenced live, so later catalog edits cannot
// alter a placed order.
type OrderItem struct {
	ID                  uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID             uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID           uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	StoreID             uuid.UUID       `gorm:"column:store_id;type:uuid;not null"`
	ProductName         string          `gorm:"column:product_name;not null"`
	Qty                 int             `gorm:"column:qty;not null"`
	UnitPrice           decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	ShippingMethodID    *int64          `gorm:"column:shipping_method_id"`
	ShippingCostPerUnit decimal.Decimal `gorm:"column:shipping_cost_per_unit;type:numeric(12,2);not null;default:0"`
	LineSubtotal        decimal.Decimal `gorm:"column:line_subtotal;type:numeric(12,2);not null"`
	LineShipping        decimal.Decimal `gorm:"column:line_shipping;type:numeric(12,2);not null;default:0"`
	LineTotal           decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null"`
	DeliveryAddress     *string         `gorm:"column:delivery_address"`
	DeliveryCity        *string         `gorm:"column:delivery_city"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
}
