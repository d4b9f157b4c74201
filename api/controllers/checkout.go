package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/api/middleware"
	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/api/validators"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/internal/totals"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

type summaryLineResponse struct {
	ProductID           uuid.UUID               `json:"product_id"`
	StoreID             uuid.UUID               `json:"store_id"`
	ProductName         string                  `json:"product_name"`
	Qty                 int                     `json:"qty"`
	UnitPrice           string                  `json:"unit_price"`
	AvailableMethods    []shippingMethodPayload `json:"available_methods"`
	SelectedMethodID    *int64                  `json:"selected_method_id,omitempty"`
	ShippingCostPerUnit string                  `json:"shipping_cost_per_unit"`
	LineSubtotal        string                  `json:"line_subtotal"`
	LineShipping        string                  `json:"line_shipping"`
	LineTotal           string                  `json:"line_total"`
	DeliveryAddress     *string                 `json:"delivery_address,omitempty"`
	DeliveryCity        *string                 `json:"delivery_city,omitempty"`
}

type shippingMethodPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CostPerUnit string `json:"cost_per_unit"`
}

type summaryStoreResponse struct {
	StoreID  uuid.UUID `json:"store_id"`
	Subtotal string    `json:"subtotal"`
	Discount string    `json:"discount"`
	Shipping string    `json:"shipping"`
	Total    string    `json:"total"`
}

type summaryResponse struct {
	Subtotal   string                 `json:"subtotal"`
	Discount   string                 `json:"discount"`
	Shipping   string                 `json:"shipping"`
	Total      string                 `json:"total"`
	CouponCode *string                `json:"coupon_code,omitempty"`
	Items      []summaryLineResponse  `json:"items"`
	Stores     []summaryStoreResponse `json:"stores"`
}

func newSummaryResponse(summary *totals.Summary) summaryResponse {
	resp := summaryResponse{
		Subtotal: summary.Subtotal.StringFixed(2),
		Discount: summary.Discount.StringFixed(2),
		Shipping: summary.Shipping.StringFixed(2),
		Total:    summary.Total.StringFixed(2),
		Items:    []summaryLineResponse{},
		Stores:   []summaryStoreResponse{},
	}
	if summary.Coupon != nil {
		code := summary.Coupon.Code
		resp.CouponCode = &code
	}
	for _, item := range summary.Items {
		methods := make([]shippingMethodPayload, 0, len(item.AvailableMethods))
		for _, method := range item.AvailableMethods {
			methods = append(methods, shippingMethodPayload{
				ID:          method.ID,
				Name:        method.Name,
				CostPerUnit: method.CostPerUnit.StringFixed(2),
			})
		}
		resp.Items = append(resp.Items, summaryLineResponse{
			ProductID:           item.ProductID,
			StoreID:             item.StoreID,
			ProductName:         item.ProductName,
			Qty:                 item.Qty,
			UnitPrice:           item.UnitPrice.StringFixed(2),
			AvailableMethods:    methods,
			SelectedMethodID:    item.SelectedMethodID,
			ShippingCostPerUnit: item.ShippingCostPerUnit.StringFixed(2),
			LineSubtotal:        item.LineSubtotal.StringFixed(2),
			LineShipping:        item.LineShipping.StringFixed(2),
			LineTotal:           item.LineTotal.StringFixed(2),
			DeliveryAddress:     item.DeliveryAddress,
			DeliveryCity:        item.DeliveryCity,
		})
	}
	for _, storeID := range summary.StoreIDs() {
		bucket := summary.Stores[storeID]
		resp.Stores = append(resp.Stores, summaryStoreResponse{
			StoreID:  storeID,
			Subtotal: bucket.Subtotal.StringFixed(2),
			Discount: bucket.Discount.StringFixed(2),
			Shipping: bucket.Shipping.StringFixed(2),
			Total:    bucket.Total.StringFixed(2),
		})
	}
	return resp
}

// CheckoutTotals recomputes and returns the session's totals preview.
func CheckoutTotals(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		summary, err := svc.PreviewTotals(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

type checkoutCustomerPayload struct {
	Name    string  `json:"name" validate:"required"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty"`
	City    *string `json:"city,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

type checkoutRequest struct {
	Customer      checkoutCustomerPayload `json:"customer" validate:"required"`
	PaymentMethod string                  `json:"payment_method" validate:"required"`
}

type checkoutResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	Subtotal         string    `json:"subtotal"`
	Discount         string    `json:"discount"`
	Shipping         string    `json:"shipping"`
	Total            string    `json:"total"`
	PayoutsScheduled int       `json:"payouts_scheduled"`
}

// CheckoutSubmit converts the session cart into an order.
func CheckoutSubmit(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		result, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			SessionID: middleware.SessionIDFromContext(r.Context()),
			Customer: orders.CustomerInput{
				Name:    payload.Customer.Name,
				Email:   payload.Customer.Email,
				Phone:   payload.Customer.Phone,
				Address: payload.Customer.Address,
				City:    payload.Customer.City,
				Notes:   payload.Customer.Notes,
			},
			PaymentMethod: method,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, checkoutResponse{
			OrderID:          result.OrderID,
			Subtotal:         result.Subtotal,
			Discount:         result.Discount,
			Shipping:         result.Shipping,
			Total:            result.Total,
			PayoutsScheduled: result.PayoutsScheduled,
		})
	}
}
