package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Store represents a marketplace vendor selling through the platform.
type Store struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name                  string          `gorm:"column:name;not null"`
	Description           *string         `gorm:"column:description"`
	ContactEmail          *string         `gorm:"column:contact_email"`
	Phone                 *string         `gorm:"column:phone"`
	CommissionRatePercent decimal.Decimal `gorm:"column:commission_rate_percent;type:numeric(5,2);not null;default:0"`
	CommissionMinAmount   decimal.Decimal `gorm:"column:commission_min_amount;type:numeric(12,2);not null;default:0"`
	TaxRatePercent        decimal.Decimal `gorm:"column:tax_rate_percent;type:numeric(5,2);not null;default:0"`
	PayoutDelayDays       int             `gorm:"column:payout_delay_days;not null;default:0"`
	IsActive              bool            `gorm:"column:is_active;not null;default:true"`
	Tags                  pq.StringArray  `gorm:"column:tags;type:text[]"`
	CreatedAt             time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
