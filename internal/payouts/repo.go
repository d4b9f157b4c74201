package payouts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// Repository manages persistence for store payouts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payout *models.StorePayout) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StorePayout, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.StorePayout, error)
	MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, method, reference *string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payout repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payout *models.StorePayout) error {
	return r.db.WithContext(ctx).Create(payout).Error
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*models.StorePayout, error) {
	var payout models.StorePayout
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&payout).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payout, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.StorePayout, error) {
	var payouts []models.StorePayout
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payouts).Error; err != nil {
		return nil, err
	}
	return payouts, nil
}

// MarkPaid flips scheduled → paid guarded by the current status, so a
// concurrent double-mark settles exactly once. Returns whether a row changed.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, paidAt time.Time, method, reference *string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.StorePayout{}).
		Where("id = ? AND status = ?", id, enums.PayoutStatusScheduled).
		Updates(map[string]any{
			"status":    enums.PayoutStatusPaid,
			"paid_at":   paidAt,
			"method":    method,
			"reference": reference,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
