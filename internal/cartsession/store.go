package cartsession

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	pkgredis "github.com/feriavirtual/feriavirtual-backend/pkg/redis"
)

// Slot names under cartsession:{sessionID}:{slot}.
const (
	slotCart        = "cart"
	slotShipping    = "shipping"
	slotDelivery    = "delivery"
	slotCoupon      = "coupon"
	slotLastOrderID = "last_order_id"
)

// Delivery is a per-product delivery address override.
type Delivery struct {
	Address string `json:"address"`
	City    string `json:"city"`
}

// Cart is the session cart: product id → quantity.
type Cart map[uuid.UUID]int

// ShippingSelections maps product id → chosen shipping method id.
type ShippingSelections map[uuid.UUID]int64

// DeliveryOverrides maps product id → delivery override.
type DeliveryOverrides map[uuid.UUID]Delivery

type keyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartSessionKey(sessionID, slot string) string
}

// Store persists the per-session cart slots in redis.
type Store interface {
	GetCart(ctx context.Context, sessionID uuid.UUID) (Cart, error)
	SetCart(ctx context.Context, sessionID uuid.UUID, cart Cart) error
	GetShippingSelections(ctx context.Context, sessionID uuid.UUID) (ShippingSelections, error)
	SetShippingSelections(ctx context.Context, sessionID uuid.UUID, selections ShippingSelections) error
	GetDeliveryOverrides(ctx context.Context, sessionID uuid.UUID) (DeliveryOverrides, error)
	SetDeliveryOverrides(ctx context.Context, sessionID uuid.UUID, overrides DeliveryOverrides) error
	GetCouponCode(ctx context.Context, sessionID uuid.UUID) (string, error)
	SetCouponCode(ctx context.Context, sessionID uuid.UUID, code string) error
	ClearCouponCode(ctx context.Context, sessionID uuid.UUID) error
	GetLastOrderID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error)
	Clear(ctx context.Context, sessionID uuid.UUID, lastOrderID uuid.UUID) error
}

type store struct {
	kv  keyValue
	ttl time.Duration
}

// NewStore wires a redis-backed cart session store.
func NewStore(kv keyValue, ttl time.Duration) (Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &store{kv: kv, ttl: ttl}, nil
}

func (s *store) GetCart(ctx context.Context, sessionID uuid.UUID) (Cart, error) {
	cart := Cart{}
	if err := s.getJSON(ctx, sessionID, slotCart, &cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *store) SetCart(ctx context.Context, sessionID uuid.UUID, cart Cart) error {
	return s.setJSON(ctx, sessionID, slotCart, cart)
}

func (s *store) GetShippingSelections(ctx context.Context, sessionID uuid.UUID) (ShippingSelections, error) {
	selections := ShippingSelections{}
	if err := s.getJSON(ctx, sessionID, slotShipping, &selections); err != nil {
		return nil, err
	}
	return selections, nil
}

func (s *store) SetShippingSelections(ctx context.Context, sessionID uuid.UUID, selections ShippingSelections) error {
	return s.setJSON(ctx, sessionID, slotShipping, selections)
}

func (s *store) GetDeliveryOverrides(ctx context.Context, sessionID uuid.UUID) (DeliveryOverrides, error) {
	overrides := DeliveryOverrides{}
	if err := s.getJSON(ctx, sessionID, slotDelivery, &overrides); err != nil {
		return nil, err
	}
	return overrides, nil
}

func (s *store) SetDeliveryOverrides(ctx context.Context, sessionID uuid.UUID, overrides DeliveryOverrides) error {
	return s.setJSON(ctx, sessionID, slotDelivery, overrides)
}

func (s *store) GetCouponCode(ctx context.Context, sessionID uuid.UUID) (string, error) {
	value, err := s.kv.Get(ctx, s.kv.CartSessionKey(sessionID.String(), slotCoupon))
	if err != nil {
		if pkgredis.IsNil(err) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetCouponCode replaces any previously applied coupon. One coupon per cart.
func (s *store) SetCouponCode(ctx context.Context, sessionID uuid.UUID, code string) error {
	return s.kv.Set(ctx, s.kv.CartSessionKey(sessionID.String(), slotCoupon), code, s.ttl)
}

func (s *store) ClearCouponCode(ctx context.Context, sessionID uuid.UUID) error {
	return s.kv.Del(ctx, s.kv.CartSessionKey(sessionID.String(), slotCoupon))
}

func (s *store) GetLastOrderID(ctx context.Context, sessionID uuid.UUID) (uuid.UUID, error) {
	value, err := s.kv.Get(ctx, s.kv.CartSessionKey(sessionID.String(), slotLastOrderID))
	if err != nil {
		if pkgredis.IsNil(err) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}
	return uuid.Parse(value)
}

// Clear wipes the cart, shipping selections, delivery overrides and coupon,
// then records the committed order id for post-checkout display.
func (s *store) Clear(ctx context.Context, sessionID uuid.UUID, lastOrderID uuid.UUID) error {
	id := sessionID.String()
	if err := s.kv.Del(ctx,
		s.kv.CartSessionKey(id, slotCart),
		s.kv.CartSessionKey(id, slotShipping),
		s.kv.CartSessionKey(id, slotDelivery),
		s.kv.CartSessionKey(id, slotCoupon),
	); err != nil {
		return err
	}
	if lastOrderID == uuid.Nil {
		return nil
	}
	return s.kv.Set(ctx, s.kv.CartSessionKey(id, slotLastOrderID), lastOrderID.String(), s.ttl)
}

func (s *store) getJSON(ctx context.Context, sessionID uuid.UUID, slot string, target any) error {
	value, err := s.kv.Get(ctx, s.kv.CartSessionKey(sessionID.String(), slot))
	if err != nil {
		if pkgredis.IsNil(err) {
			return nil
		}
		return err
	}
	if value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("decoding %s slot: %w", slot, err)
	}
	return nil
}

func (s *store) setJSON(ctx context.Context, sessionID uuid.UUID, slot string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s slot: %w", slot, err)
	}
	return s.kv.Set(ctx, s.kv.CartSessionKey(sessionID.String(), slot), string(encoded), s.ttl)
}
