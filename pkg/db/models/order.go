package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// Order is the checkout header. It is written once and only its payment
// status fields ever change afterwards.
type Order struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerName     string              `gorm:"column:customer_name;not null"`
	CustomerEmail    string              `gorm:"column:customer_email;not null"`
	CustomerPhone    *string             `gorm:"column:customer_phone"`
	CustomerAddress  *string             `gorm:"column:customer_address"`
	CustomerCity     *string             `gorm:"column:customer_city"`
	CustomerNotes    *string             `gorm:"column:customer_notes"`
	CouponID         *uuid.UUID          `gorm:"column:coupon_id;type:uuid"`
	Subtotal         decimal.Decimal     `gorm:"column:subtotal;type:numeric(12,2);not null"`
	Discount         decimal.Decimal     `gorm:"column:discount;type:numeric(12,2);not null;default:0"`
	Shipping         decimal.Decimal     `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Total            decimal.Decimal     `gorm:"column:total;type:numeric(12,2);not null"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	PaymentReference *string             `gorm:"column:payment_reference"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StoreTotals      []OrderStoreTotal   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
