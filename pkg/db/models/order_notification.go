package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// OrderNotification is the write-once audit record of a store order alert.
type OrderNotification struct {
	ID        uuid.UUID                 `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID                 `gorm:"column:order_id;type:uuid;not null"`
	StoreID   uuid.UUID                 `gorm:"column:store_id;type:uuid;not null"`
	Channel   enums.NotificationChannel `gorm:"column:channel;type:notification_channel;not null"`
	Content   string                    `gorm:"column:content;not null"`
	CreatedAt time.Time                 `gorm:"column:created_at;autoCreateTime"`
}
