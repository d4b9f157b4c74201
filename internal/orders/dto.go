package orders

import (
	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
)

// CustomerInput is the checkout contact snapshot. Name and email are the only
// required fields; the rest is copied onto the order as provided.
type CustomerInput struct {
	Name    string
	Email   string
	Phone   *string
	Address *string
	City    *string
	Notes   *string
}

// CreateOrderInput is one checkout submission for a browsing session.
type CreateOrderInput struct {
	SessionID     uuid.UUID
	Customer      CustomerInput
	PaymentMethod enums.PaymentMethod
}

// CreateOrderResult reports the committed order back to the caller.
type CreateOrderResult struct {
	OrderID          uuid.UUID
	Subtotal         string
	Discount         string
	Shipping         string
	Total            string
	PayoutsScheduled int
}
