package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

type orderItemResponse struct {
	ProductID           uuid.UUID `json:"product_id"`
	StoreID             uuid.UUID `json:"store_id"`
	ProductName         string    `json:"product_name"`
	Qty                 int       `json:"qty"`
	UnitPrice           string    `json:"unit_price"`
	ShippingMethodID    *int64    `json:"shipping_method_id,omitempty"`
	ShippingCostPerUnit string    `json:"shipping_cost_per_unit"`
	LineSubtotal        string    `json:"line_subtotal"`
	LineShipping        string    `json:"line_shipping"`
	LineTotal           string    `json:"line_total"`
	DeliveryAddress     *string   `json:"delivery_address,omitempty"`
	DeliveryCity        *string   `json:"delivery_city,omitempty"`
}

type orderStoreTotalResponse struct {
	StoreID  uuid.UUID `json:"store_id"`
	Subtotal string    `json:"subtotal"`
	Discount string    `json:"discount"`
	Shipping string    `json:"shipping"`
	Total    string    `json:"total"`
}

type orderResponse struct {
	ID               uuid.UUID                 `json:"id"`
	CustomerName     string                    `json:"customer_name"`
	CustomerEmail    string                    `json:"customer_email"`
	Subtotal         string                    `json:"subtotal"`
	Discount         string                    `json:"discount"`
	Shipping         string                    `json:"shipping"`
	Total            string                    `json:"total"`
	PaymentMethod    string                    `json:"payment_method"`
	PaymentStatus    string                    `json:"payment_status"`
	PaymentReference *string                   `json:"payment_reference,omitempty"`
	Items            []orderItemResponse       `json:"items"`
	StoreTotals      []orderStoreTotalResponse `json:"store_totals"`
	CreatedAt        time.Time                 `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		ID:               order.ID,
		CustomerName:     order.CustomerName,
		CustomerEmail:    order.CustomerEmail,
		Subtotal:         order.Subtotal.StringFixed(2),
		Discount:         order.Discount.StringFixed(2),
		Shipping:         order.Shipping.StringFixed(2),
		Total:            order.Total.StringFixed(2),
		PaymentMethod:    order.PaymentMethod.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		PaymentReference: order.PaymentReference,
		Items:            []orderItemResponse{},
		StoreTotals:      []orderStoreTotalResponse{},
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:           item.ProductID,
			StoreID:             item.StoreID,
			ProductName:         item.ProductName,
			Qty:                 item.Qty,
			UnitPrice:           item.UnitPrice.StringFixed(2),
			ShippingMethodID:    item.ShippingMethodID,
			ShippingCostPerUnit: item.ShippingCostPerUnit.StringFixed(2),
			LineSubtotal:        item.LineSubtotal.StringFixed(2),
			LineShipping:        item.LineShipping.StringFixed(2),
			LineTotal:           item.LineTotal.StringFixed(2),
			DeliveryAddress:     item.DeliveryAddress,
			DeliveryCity:        item.DeliveryCity,
		})
	}
	for _, total := range order.StoreTotals {
		resp.StoreTotals = append(resp.StoreTotals, orderStoreTotalResponse{
			StoreID:  total.StoreID,
			Subtotal: total.Subtotal.StringFixed(2),
			Discount: total.Discount.StringFixed(2),
			Shipping: total.Shipping.StringFixed(2),
			Total:    total.Total.StringFixed(2),
		})
	}
	return resp
}

// OrderFetch returns one committed order with its items and store breakdown.
func OrderFetch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
