package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// StorePayout is the net amount owed to one store for one order. It is
// created scheduled and transitions to paid exactly once.
type StorePayout struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID               uuid.UUID          `gorm:"column:order_id;type:uuid;not null"`
	StoreID               uuid.UUID          `gorm:"column:store_id;type:uuid;not null"`
	Amount                decimal.Decimal    `gorm:"column:amount;type:numeric(12,2);not null"`
	Status                enums.PayoutStatus `gorm:"column:status;type:payout_status;not null;default:'scheduled'"`
	ScheduledAt           time.Time          `gorm:"column:scheduled_at;not null"`
	CommissionPercent     decimal.Decimal    `gorm:"column:commission_percent;type:numeric(5,2);not null;default:0"`
	CommissionMin         decimal.Decimal    `gorm:"column:commission_min;type:numeric(12,2);not null;default:0"`
	CommissionAmount      decimal.Decimal    `gorm:"column:commission_amount;type:numeric(12,2);not null;default:0"`
	CommissionVATPercent  decimal.Decimal    `gorm:"column:commission_vat_percent;type:numeric(5,2);not null;default:0"`
	CommissionVATAmount   decimal.Decimal    `gorm:"column:commission_vat_amount;type:numeric(12,2);not null;default:0"`
	CommissionGrossAmount decimal.Decimal    `gorm:"column:commission_gross_amount;type:numeric(12,2);not null;default:0"`
	NetAmount             decimal.Decimal    `gorm:"column:net_amount;type:numeric(12,2);not null;default:0"`
	PaidAt                *time.Time         `gorm:"column:paid_at"`
	Method                *string            `gorm:"column:method"`
	Reference             *string            `gorm:"column:reference"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
