package shipping

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
)

// Repository loads shipping method assignments for products and groups.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	MethodsForProduct(ctx context.Context, productID uuid.UUID) ([]models.ShippingMethod, error)
	MethodsForGroup(ctx context.Context, groupID uuid.UUID) ([]models.ShippingMethod, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a shipping repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) MethodsForProduct(ctx context.Context, productID uuid.UUID) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Joins("JOIN product_shipping_methods psm ON psm.shipping_method_id = shipping_methods.id").
		Where("psm.product_id = ? AND shipping_methods.is_active = ?", productID, true).
		Order("shipping_methods.id ASC").
		Find(&methods).Error
	return methods, err
}

func (r *repository) MethodsForGroup(ctx context.Context, groupID uuid.UUID) ([]models.ShippingMethod, error) {
	var methods []models.ShippingMethod
	err := r.db.WithContext(ctx).
		Joins("JOIN group_shipping_methods gsm ON gsm.shipping_method_id = shipping_methods.id").
		Where("gsm.shipping_group_id = ? AND shipping_methods.is_active = ?", groupID, true).
		Order("shipping_methods.id ASC").
		Find(&methods).Error
	return methods, err
}
