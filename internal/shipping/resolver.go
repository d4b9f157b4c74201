package shipping

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
)

// Resolver returns the ordered list of shipping methods available to a product.
type Resolver interface {
	WithTx(tx *gorm.DB) Resolver
	Resolve(ctx context.Context, product *models.Product) ([]models.ShippingMethod, error)
}

type resolver struct {
	repo Repository
}

// NewResolver wires a shipping resolver with the provided repository.
func NewResolver(repo Repository) (Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("shipping repository required")
	}
	return &resolver{repo: repo}, nil
}

func (r *resolver) WithTx(tx *gorm.DB) Resolver {
	return &resolver{repo: r.repo.WithTx(tx)}
}

// Resolve looks up methods assigned directly to the product, falling back to
// the product's shipping group. An empty result is a valid state: the item
// simply ships at no cost.
func (r *resolver) Resolve(ctx context.Context, product *models.Product) ([]models.ShippingMethod, error) {
	if product == nil {
		return nil, fmt.Errorf("product required")
	}

	methods, err := r.repo.MethodsForProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if len(methods) > 0 {
		return methods, nil
	}

	if product.ShippingGroupID == nil {
		return nil, nil
	}
	return r.repo.MethodsForGroup(ctx, *product.ShippingGroupID)
}
