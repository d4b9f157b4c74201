package enums

import "fmt"

// CouponType describes how a coupon discounts a cart.
type CouponType string

const (
	CouponTypePercent      CouponType = "percent"
	CouponTypeAmount       CouponType = "amount"
	CouponTypeFreeShipping CouponType = "free_shipping"
)

var validCouponTypes = []CouponType{
	CouponTypePercent,
	CouponTypeAmount,
	CouponTypeFreeShipping,
}

// String implements fmt.Stringer.
func (c CouponType) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CouponType.
func (c CouponType) IsValid() bool {
	for _, candidate := range validCouponTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCouponType converts raw input into a CouponType.
func ParseCouponType(value string) (CouponType, error) {
	for _, candidate := range validCouponTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid coupon type %q", value)
}
