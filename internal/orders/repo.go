package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// Repository persists the order graph.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateNotifications(ctx context.Context, notes []models.OrderNotification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	SetPaymentPaid(ctx context.Context, orderID uuid.UUID, reference *string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an order repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Create inserts the order header together with its items and per-store
// totals in one statement batch.
func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateNotifications(ctx context.Context, notes []models.OrderNotification) error {
	if len(notes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notes).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StoreTotals").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// SetPaymentPaid flips the order payment status pending → paid guarded by the
// current status. Returns whether a row changed.
func (r *repository) SetPaymentPaid(ctx context.Context, orderID uuid.UUID, reference *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", orderID, enums.PaymentStatusPaid).
		Updates(map[string]any{
			"payment_status":    enums.PaymentStatusPaid,
			"payment_reference": reference,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
