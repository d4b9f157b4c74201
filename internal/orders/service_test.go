package orders

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/catalog"
	"github.com/feriavirtual/feriavirtual-backend/internal/notifications"
	"github.com/feriavirtual/feriavirtual-backend/internal/payouts"
	"github.com/feriavirtual/feriavirtual-backend/internal/totals"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
)

var orderTestDDL = []string{
	`CREATE TABLE IF NOT EXISTS stores (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  contact_email TEXT,
  phone TEXT,
  commission_rate_percent NUMERIC NOT NULL DEFAULT 0,
  commission_min_amount NUMERIC NOT NULL DEFAULT 0,
  tax_rate_percent NUMERIC NOT NULL DEFAULT 0,
  payout_delay_days INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  tags TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  customer_email TEXT NOT NULL,
  customer_phone TEXT,
  customer_address TEXT,
  customer_city TEXT,
  customer_notes TEXT,
  coupon_id TEXT,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  payment_reference TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  shipping_method_id INTEGER,
  shipping_cost_per_unit NUMERIC NOT NULL DEFAULT 0,
  line_subtotal NUMERIC NOT NULL,
  line_shipping NUMERIC NOT NULL DEFAULT 0,
  line_total NUMERIC NOT NULL,
  delivery_address TEXT,
  delivery_city TEXT,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_store_totals (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  UNIQUE (order_id, store_id)
);`,
	`CREATE TABLE IF NOT EXISTS store_payouts (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'scheduled',
  scheduled_at DATETIME NOT NULL,
  commission_percent NUMERIC NOT NULL DEFAULT 0,
  commission_min NUMERIC NOT NULL DEFAULT 0,
  commission_amount NUMERIC NOT NULL DEFAULT 0,
  commission_vat_percent NUMERIC NOT NULL DEFAULT 0,
  commission_vat_amount NUMERIC NOT NULL DEFAULT 0,
  commission_gross_amount NUMERIC NOT NULL DEFAULT 0,
  net_amount NUMERIC NOT NULL DEFAULT 0,
  paid_at DATETIME,
  method TEXT,
  reference TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS order_notifications (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  channel TEXT NOT NULL,
  content TEXT NOT NULL,
  created_at DATETIME
);`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`,
}

func setupOrdersTestDB(t *testing.T, dsn string, skip map[string]bool) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	for _, ddl := range orderTestDDL {
		name := tableName(ddl)
		if skip[name] {
			continue
		}
		require.NoError(t, conn.Exec(ddl).Error)
	}
	return conn
}

func tableName(ddl string) string {
	const marker = "IF NOT EXISTS "
	start := len("CREATE TABLE ") + len(marker)
	rest := ddl[start:]
	for i := range rest {
		if rest[i] == ' ' {
			return rest[:i]
		}
	}
	return rest
}

type fakeCartStore struct {
	cart        cartsession.Cart
	clearedWith uuid.UUID
	cleared     bool
}

func (f *fakeCartStore) GetCart(context.Context, uuid.UUID) (cartsession.Cart, error) {
	return f.cart, nil
}
func (f *fakeCartStore) SetCart(context.Context, uuid.UUID, cartsession.Cart) error { return nil }
func (f *fakeCartStore) GetShippingSelections(context.Context, uuid.UUID) (cartsession.ShippingSelections, error) {
	return cartsession.ShippingSelections{}, nil
}
func (f *fakeCartStore) SetShippingSelections(context.Context, uuid.UUID, cartsession.ShippingSelections) error {
	return nil
}
func (f *fakeCartStore) GetDeliveryOverrides(context.Context, uuid.UUID) (cartsession.DeliveryOverrides, error) {
	return cartsession.DeliveryOverrides{}, nil
}
func (f *fakeCartStore) SetDeliveryOverrides(context.Context, uuid.UUID, cartsession.DeliveryOverrides) error {
	return nil
}
func (f *fakeCartStore) GetCouponCode(context.Context, uuid.UUID) (string, error) { return "", nil }
func (f *fakeCartStore) SetCouponCode(context.Context, uuid.UUID, string) error   { return nil }
func (f *fakeCartStore) ClearCouponCode(context.Context, uuid.UUID) error         { return nil }
func (f *fakeCartStore) GetLastOrderID(context.Context, uuid.UUID) (uuid.UUID, error) {
	return f.clearedWith, nil
}
func (f *fakeCartStore) Clear(_ context.Context, _ uuid.UUID, lastOrderID uuid.UUID) error {
	f.cleared = true
	f.clearedWith = lastOrderID
	return nil
}

type fakeAggregator struct {
	summary *totals.Summary
}

func (f *fakeAggregator) Compute(context.Context, totals.ComputeInput) (*totals.Summary, error) {
	return f.summary, nil
}

type fakeCouponResolver struct{}

func (fakeCouponResolver) Resolve(context.Context, string) (*models.Coupon, error) {
	return nil, nil
}

type fakeMailer struct {
	sent []string
}

func (f *fakeMailer) Send(_ context.Context, to, _, _ string) error {
	f.sent = append(f.sent, to)
	return nil
}

func seedStore(t *testing.T, conn *gorm.DB, contactEmail *string) *models.Store {
	t.Helper()

	st := &models.Store{
		ID:                    uuid.New(),
		Name:                  "Huerta Central",
		ContactEmail:          contactEmail,
		CommissionRatePercent: decimal.RequireFromString("10"),
		CommissionMinAmount:   decimal.Zero,
		TaxRatePercent:        decimal.Zero,
		PayoutDelayDays:       7,
		IsActive:              true,
	}
	require.NoError(t, conn.Create(st).Error)
	return st
}

func summaryForStore(storeID uuid.UUID) *totals.Summary {
	item := totals.LineItem{
		ProductID:    uuid.New(),
		StoreID:      storeID,
		ProductName:  "Caja de paltas",
		Qty:          2,
		UnitPrice:    decimal.RequireFromString("10.00"),
		LineSubtotal: decimal.RequireFromString("20.00"),
		LineShipping: decimal.RequireFromString("6.00"),
		LineTotal:    decimal.RequireFromString("26.00"),
	}
	return &totals.Summary{
		Subtotal: decimal.RequireFromString("20.00"),
		Discount: decimal.Zero,
		Shipping: decimal.RequireFromString("6.00"),
		Total:    decimal.RequireFromString("26.00"),
		Items:    []totals.LineItem{item},
		Stores: map[uuid.UUID]*totals.StoreBucket{
			storeID: {
				StoreID:  storeID,
				Subtotal: decimal.RequireFromString("20.00"),
				Discount: decimal.Zero,
				Shipping: decimal.RequireFromString("6.00"),
				Total:    decimal.RequireFromString("26.00"),
				Items:    []totals.LineItem{item},
			},
		},
	}
}

func newCheckoutService(t *testing.T, conn *gorm.DB, cart *fakeCartStore, agg totals.Aggregator, mail *fakeMailer) Service {
	t.Helper()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	notifier, err := notifications.NewService(mail, config.CheckoutConfig{EmailNotificationsEnabled: true}, logg, nil)
	require.NoError(t, err)
	events := outbox.NewService(outbox.NewRepository(conn), logg)

	svc, err := NewService(
		db.NewWithConn(conn),
		NewRepository(conn),
		catalog.NewRepository(conn),
		payouts.NewRepository(conn),
		agg,
		fakeCouponResolver{},
		cart,
		notifier,
		events,
		logg,
		nil,
		config.CheckoutConfig{CommissionVATPercent: "19", EmailNotificationsEnabled: true},
		time.Now,
	)
	require.NoError(t, err)
	return svc
}

func TestCreateOrderPersistsWholeGraph(t *testing.T) {
	conn := setupOrdersTestDB(t, "file::memory:?cache=shared", nil)
	email := "huerta@example.com"
	st := seedStore(t, conn, &email)
	cart := &fakeCartStore{cart: cartsession.Cart{uuid.New(): 2}}
	mail := &fakeMailer{}
	svc := newCheckoutService(t, conn, cart, &fakeAggregator{summary: summaryForStore(st.ID)}, mail)

	result, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionID:     uuid.New(),
		Customer:      CustomerInput{Name: "Ana", Email: "ana@example.com"},
		PaymentMethod: enums.PaymentMethodTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, "26.00", result.Total)
	assert.Equal(t, 1, result.PayoutsScheduled)

	var order models.Order
	require.NoError(t, conn.Where("id = ?", result.OrderID).First(&order).Error)
	assert.Equal(t, enums.PaymentStatusPending, order.PaymentStatus)

	var itemCount, totalCount, noteCount, eventCount int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Where("order_id = ?", result.OrderID).Count(&itemCount).Error)
	require.NoError(t, conn.Model(&models.OrderStoreTotal{}).Where("order_id = ?", result.OrderID).Count(&totalCount).Error)
	require.NoError(t, conn.Model(&models.OrderNotification{}).Where("order_id = ?", result.OrderID).Count(&noteCount).Error)
	require.NoError(t, conn.Model(&models.OutboxEvent{}).Where("aggregate_id = ?", result.OrderID).Count(&eventCount).Error)
	assert.Equal(t, int64(1), itemCount)
	assert.Equal(t, int64(1), totalCount)
	assert.Equal(t, int64(1), noteCount)
	assert.Equal(t, int64(1), eventCount)

	var payout models.StorePayout
	require.NoError(t, conn.Where("order_id = ?", result.OrderID).First(&payout).Error)
	assert.Equal(t, st.ID, payout.StoreID)
	assert.Equal(t, enums.PayoutStatusScheduled, payout.Status)
	// 10% of 20.00 = 2.00 commission, 19% VAT = 0.38, net 26.00 - 2.38 = 23.62
	assert.True(t, payout.CommissionAmount.Equal(decimal.RequireFromString("2.00")), "commission %s", payout.CommissionAmount)
	assert.True(t, payout.NetAmount.Equal(decimal.RequireFromString("23.62")), "net %s", payout.NetAmount)

	assert.True(t, cart.cleared, "cart must be cleared after commit")
	assert.Equal(t, result.OrderID, cart.clearedWith)
	assert.Equal(t, []string{"huerta@example.com"}, mail.sent)
}

func TestCreateOrderEmptyCartRejectedBeforeTx(t *testing.T) {
	conn := setupOrdersTestDB(t, "file::memory:?cache=shared", nil)
	cart := &fakeCartStore{cart: cartsession.Cart{}}
	empty := &totals.Summary{Stores: map[uuid.UUID]*totals.StoreBucket{}}
	svc := newCheckoutService(t, conn, cart, &fakeAggregator{summary: empty}, &fakeMailer{})

	var before int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&before).Error)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionID:     uuid.New(),
		Customer:      CustomerInput{Name: "Ana", Email: "ana@example.com"},
		PaymentMethod: enums.PaymentMethodCash,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())

	var after int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&after).Error)
	assert.Equal(t, before, after, "empty cart must not write any rows")
	assert.False(t, cart.cleared)
}

func TestCreateOrderValidatesInput(t *testing.T) {
	conn := setupOrdersTestDB(t, "file::memory:?cache=shared", nil)
	st := seedStore(t, conn, nil)
	svc := newCheckoutService(t, conn, &fakeCartStore{}, &fakeAggregator{summary: summaryForStore(st.ID)}, &fakeMailer{})

	cases := []CreateOrderInput{
		{SessionID: uuid.Nil, Customer: CustomerInput{Name: "Ana", Email: "a@b.c"}, PaymentMethod: enums.PaymentMethodCash},
		{SessionID: uuid.New(), Customer: CustomerInput{Name: "", Email: "a@b.c"}, PaymentMethod: enums.PaymentMethodCash},
		{SessionID: uuid.New(), Customer: CustomerInput{Name: "Ana", Email: ""}, PaymentMethod: enums.PaymentMethodCash},
		{SessionID: uuid.New(), Customer: CustomerInput{Name: "Ana", Email: "a@b.c"}, PaymentMethod: enums.PaymentMethod("voucher")},
	}
	for _, input := range cases {
		_, err := svc.CreateOrder(context.Background(), input)
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	}
}

// A failure on any row of the order graph must roll the whole order back.
func TestCreateOrderRollsBackOnFailure(t *testing.T) {
	conn := setupOrdersTestDB(t, "file:orders_rollback?mode=memory&cache=shared", map[string]bool{"store_payouts": true})
	st := seedStore(t, conn, nil)
	cart := &fakeCartStore{cart: cartsession.Cart{uuid.New(): 1}}
	svc := newCheckoutService(t, conn, cart, &fakeAggregator{summary: summaryForStore(st.ID)}, &fakeMailer{})

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		SessionID:     uuid.New(),
		Customer:      CustomerInput{Name: "Ana", Email: "ana@example.com"},
		PaymentMethod: enums.PaymentMethodTransbank,
	})
	require.Error(t, err, "missing payout table must fail the checkout")

	var orderCount, itemCount int64
	require.NoError(t, conn.Model(&models.Order{}).Count(&orderCount).Error)
	require.NoError(t, conn.Model(&models.OrderItem{}).Count(&itemCount).Error)
	assert.Equal(t, int64(0), orderCount, "order header must be rolled back")
	assert.Equal(t, int64(0), itemCount, "order items must be rolled back")
	assert.False(t, cart.cleared, "failed checkout must keep the cart")
}
