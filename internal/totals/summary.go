package totals

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
)

// LineItem is one resolved cart line inside a Summary. Prices and shipping
// costs are snapshots taken at aggregation time.
type LineItem struct {
	ProductID           uuid.UUID
	StoreID             uuid.UUID
	ProductName         string
	Qty                 int
	UnitPrice           decimal.Decimal
	AvailableMethods    []models.ShippingMethod
	SelectedMethodID    *int64
	ShippingCostPerUnit decimal.Decimal
	LineSubtotal        decimal.Decimal
	LineShipping        decimal.Decimal
	LineTotal           decimal.Decimal
	DeliveryAddress     *string
	DeliveryCity        *string
}

// StoreBucket is the per-store slice of the cart.
type StoreBucket struct {
	StoreID  uuid.UUID
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Items    []LineItem
}

// Summary is the immutable result of one totals computation. It is
// recomputed on every request and never persisted directly.
type Summary struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
	Items    []LineItem
	Coupon   *models.Coupon
	Stores   map[uuid.UUID]*StoreBucket
}

// IsEmpty reports whether no cart line survived resolution.
func (s *Summary) IsEmpty() bool {
	return s == nil || len(s.Items) == 0
}

// StoreIDs returns the bucket keys in deterministic order.
func (s *Summary) StoreIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Stores))
	for _, item := range s.Items {
		seen := false
		for _, id := range ids {
			if id == item.StoreID {
				seen = true
				break
			}
		}
		if !seen {
			ids = append(ids, item.StoreID)
		}
	}
	return ids
}
