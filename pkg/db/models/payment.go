package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// Payment is one payment attempt against an order. An order may carry a
// failed attempt followed by a successful one.
type Payment struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID           `gorm:"column:order_id;type:uuid;not null"`
	Method           enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	Amount           decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status           enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	TransactionID    *string             `gorm:"column:transaction_id"`
	TransferCode     *string             `gorm:"column:transfer_code"`
	PickupLocationID *uuid.UUID          `gorm:"column:pickup_location_id;type:uuid"`
	PaidAt           *time.Time          `gorm:"column:paid_at"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
