package outbox

import (
	"encoding/json"
	"time"
)

// PayloadEnvelope is the stable payload structure stored in outbox_events.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// OrderCreatedData is the v1 payload for order_created events.
type OrderCreatedData struct {
	OrderID  string   `json:"orderId"`
	Total    string   `json:"total"`
	StoreIDs []string `json:"storeIds"`
}

// PaymentPaidData is the v1 payload for payment_paid events.
type PaymentPaidData struct {
	PaymentID     string  `json:"paymentId"`
	OrderID       string  `json:"orderId"`
	TransactionID *string `json:"transactionId,omitempty"`
}

// PayoutPaidData is the v1 payload for payout_paid events.
type PayoutPaidData struct {
	PayoutID  string  `json:"payoutId"`
	OrderID   string  `json:"orderId"`
	StoreID   string  `json:"storeId"`
	Method    *string `json:"method,omitempty"`
	Reference *string `json:"reference,omitempty"`
}
