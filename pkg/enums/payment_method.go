package enums

import "fmt"

// PaymentMethod is the channel a shopper chose to pay an order with.
type PaymentMethod string

const (
	PaymentMethodTransbank PaymentMethod = "transbank"
	PaymentMethodTransfer  PaymentMethod = "transfer"
	PaymentMethodCash      PaymentMethod = "cash"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodTransbank,
	PaymentMethodTransfer,
	PaymentMethodCash,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
