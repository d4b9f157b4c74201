package totals

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/catalog"
	"github.com/feriavirtual/feriavirtual-backend/internal/shipping"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// ComputeInput carries the session state one totals computation folds over.
type ComputeInput struct {
	Cart               cartsession.Cart
	ShippingSelections cartsession.ShippingSelections
	DeliveryOverrides  cartsession.DeliveryOverrides
	Coupon             *models.Coupon
}

// Aggregator folds cart state into an immutable Summary. Read-only and safe
// to call repeatedly, both for cart preview and immediately before checkout.
type Aggregator interface {
	Compute(ctx context.Context, input ComputeInput) (*Summary, error)
}

type aggregator struct {
	catalogRepo catalog.Repository
	shipping    shipping.Resolver
}

// NewAggregator wires a totals aggregator.
func NewAggregator(catalogRepo catalog.Repository, shippingResolver shipping.Resolver) (Aggregator, error) {
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if shippingResolver == nil {
		return nil, fmt.Errorf("shipping resolver required")
	}
	return &aggregator{catalogRepo: catalogRepo, shipping: shippingResolver}, nil
}

func (a *aggregator) Compute(ctx context.Context, input ComputeInput) (*Summary, error) {
	summary := &Summary{
		Subtotal: decimal.Zero,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Total:    decimal.Zero,
		Coupon:   input.Coupon,
		Stores:   map[uuid.UUID]*StoreBucket{},
	}

	productIDs := sortedProductIDs(input.Cart)
	if len(productIDs) == 0 {
		return summary, nil
	}

	products, err := a.catalogRepo.GetActiveProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	productsByID := make(map[uuid.UUID]models.Product, len(products))
	for _, product := range products {
		productsByID[product.ID] = product
	}

	freeShipping := input.Coupon != nil && input.Coupon.Type == enums.CouponTypeFreeShipping

	for _, productID := range productIDs {
		qty := input.Cart[productID]
		if qty < 1 {
			continue
		}
		// Lines whose product vanished or went inactive are dropped
		// silently; stale sessions are not an error.
		product, ok := productsByID[productID]
		if !ok {
			continue
		}

		methods, err := a.shipping.Resolve(ctx, &product)
		if err != nil {
			return nil, err
		}

		item := LineItem{
			ProductID:    product.ID,
			StoreID:      product.StoreID,
			ProductName:  product.Name,
			Qty:          qty,
			UnitPrice:    product.Price,
			LineSubtotal: product.Price.Mul(decimal.NewFromInt(int64(qty))),
			LineShipping: decimal.Zero,
		}
		item.AvailableMethods = methods

		if method := pickMethod(methods, input.ShippingSelections[productID]); method != nil {
			id := method.ID
			item.SelectedMethodID = &id
			if !freeShipping {
				item.ShippingCostPerUnit = method.CostPerUnit
				item.LineShipping = method.CostPerUnit.Mul(decimal.NewFromInt(int64(qty)))
			}
		}
		item.LineTotal = item.LineSubtotal.Add(item.LineShipping)

		if override, ok := input.DeliveryOverrides[productID]; ok {
			if override.Address != "" {
				address := override.Address
				item.DeliveryAddress = &address
			}
			if override.City != "" {
				city := override.City
				item.DeliveryCity = &city
			}
		}

		summary.Subtotal = summary.Subtotal.Add(item.LineSubtotal)
		summary.Shipping = summary.Shipping.Add(item.LineShipping)
		summary.Items = append(summary.Items, item)

		bucket, ok := summary.Stores[product.StoreID]
		if !ok {
			bucket = &StoreBucket{
				StoreID:  product.StoreID,
				Subtotal: decimal.Zero,
				Discount: decimal.Zero,
				Shipping: decimal.Zero,
				Total:    decimal.Zero,
			}
			summary.Stores[product.StoreID] = bucket
		}
		bucket.Subtotal = bucket.Subtotal.Add(item.LineSubtotal)
		bucket.Shipping = bucket.Shipping.Add(item.LineShipping)
		bucket.Items = append(bucket.Items, item)
	}

	summary.Discount = computeDiscount(input.Coupon, summary.Subtotal)
	allocateStoreDiscounts(summary)
	roundOutputs(summary)
	return summary, nil
}

func sortedProductIDs(cart cartsession.Cart) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// pickMethod honors a valid session selection and otherwise defaults to the
// first available method. A nil return means the item ships at no cost.
func pickMethod(methods []models.ShippingMethod, selectedID int64) *models.ShippingMethod {
	if len(methods) == 0 {
		return nil
	}
	if selectedID != 0 {
		for i := range methods {
			if methods[i].ID == selectedID {
				return &methods[i]
			}
		}
	}
	return &methods[0]
}

func computeDiscount(coupon *models.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if coupon == nil {
		return decimal.Zero
	}
	switch coupon.Type {
	case enums.CouponTypePercent:
		discount := subtotal.Mul(coupon.Value).Div(decimal.NewFromInt(100))
		return decimal.Min(subtotal, discount)
	case enums.CouponTypeAmount:
		return decimal.Min(subtotal, coupon.Value)
	default:
		// free_shipping zeroes shipping during accumulation; no discount.
		return decimal.Zero
	}
}

// allocateStoreDiscounts splits the global discount across stores in
// proportion to subtotal share. Each store rounds independently, so the
// per-store sum may drift from the global discount by a cent.
func allocateStoreDiscounts(summary *Summary) {
	if summary.Discount.IsZero() || summary.Subtotal.IsZero() {
		return
	}
	for _, bucket := range summary.Stores {
		bucket.Discount = summary.Discount.Mul(bucket.Subtotal).Div(summary.Subtotal)
	}
}

func roundOutputs(summary *Summary) {
	summary.Subtotal = summary.Subtotal.Round(2)
	summary.Discount = summary.Discount.Round(2)
	summary.Shipping = summary.Shipping.Round(2)
	summary.Total = grandTotal(summary.Subtotal, summary.Discount, summary.Shipping)

	for i := range summary.Items {
		summary.Items[i].LineSubtotal = summary.Items[i].LineSubtotal.Round(2)
		summary.Items[i].LineShipping = summary.Items[i].LineShipping.Round(2)
		summary.Items[i].LineTotal = summary.Items[i].LineTotal.Round(2)
	}

	for _, bucket := range summary.Stores {
		bucket.Subtotal = bucket.Subtotal.Round(2)
		bucket.Discount = bucket.Discount.Round(2)
		bucket.Shipping = bucket.Shipping.Round(2)
		bucket.Total = grandTotal(bucket.Subtotal, bucket.Discount, bucket.Shipping)
	}
}

func grandTotal(subtotal, discount, shipping decimal.Decimal) decimal.Decimal {
	net := subtotal.Sub(discount)
	if net.IsNegative() {
		net = decimal.Zero
	}
	return net.Add(shipping).Round(2)
}
