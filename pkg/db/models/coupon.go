package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// Coupon is a platform-wide discount code applied at checkout.
type Coupon struct {
	ID        uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code      string           `gorm:"column:code;not null;uniqueIndex:coupons_code_key"`
	Type      enums.CouponType `gorm:"column:type;type:coupon_type;not null"`
	Value     decimal.Decimal  `gorm:"column:value;type:numeric(12,2);not null;default:0"`
	IsActive  bool             `gorm:"column:is_active;not null;default:true"`
	ExpiresAt *time.Time       `gorm:"column:expires_at"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
