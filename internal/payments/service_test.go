package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	ordersTable := `
CREATE TABLE IF NOT EXISTS orders (
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
);`
	paymentsTable := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  method TEXT NOT NULL,
  amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  transaction_id TEXT,
  transfer_code TEXT,
  pickup_location_id TEXT,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItemsTable := `
CREATE TABLE IF NOT EXISTS order_items (
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
);`
	orderStoreTotalsTable := `
CREATE TABLE IF NOT EXISTS order_store_totals (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  store_id TEXT NOT NULL,
  subtotal NUMERIC NOT NULL,
  discount NUMERIC NOT NULL DEFAULT 0,
  shipping NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  UNIQUE (order_id, store_id)
);`
	outboxTable := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, conn.Exec(ordersTable).Error)
	require.NoError(t, conn.Exec(orderItemsTable).Error)
	require.NoError(t, conn.Exec(orderStoreTotalsTable).Error)
	require.NoError(t, conn.Exec(paymentsTable).Error)
	require.NoError(t, conn.Exec(outboxTable).Error)
	return conn
}

func createPendingOrder(t *testing.T, conn *gorm.DB) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:            uuid.New(),
		CustomerName:  "Ana",
		CustomerEmail: "ana@example.com",
		Subtotal:      decimal.RequireFromString("20.00"),
		Total:         decimal.RequireFromString("26.00"),
		PaymentMethod: enums.PaymentMethodTransfer,
		PaymentStatus: enums.PaymentStatusPending,
	}
	require.NoError(t, conn.Create(order).Error)
	return order
}

func newPaymentService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()

	events := outbox.NewService(outbox.NewRepository(conn), nil)
	svc, err := NewService(db.NewWithConn(conn), NewRepository(conn), orders.NewRepository(conn), events, nil, time.Now)
	require.NoError(t, err)
	return svc
}

func TestCreateAttemptSnapshotsOrderTotal(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	svc := newPaymentService(t, conn)
	order := createPendingOrder(t, conn)

	payment, err := svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodTransbank,
	})
	require.NoError(t, err)
	assert.True(t, payment.Amount.Equal(order.Total))
	assert.Equal(t, enums.PaymentStatusPending, payment.Status)

	// A second attempt is allowed while the order stays unpaid.
	_, err = svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodTransfer,
	})
	require.NoError(t, err)

	attempts, err := svc.ListByOrderID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}

func TestCreateAttemptUnknownOrder(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	svc := newPaymentService(t, conn)

	_, err := svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: uuid.New(),
		Method:  enums.PaymentMethodCash,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestMarkPaidFlipsPaymentAndOrder(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	svc := newPaymentService(t, conn)
	order := createPendingOrder(t, conn)

	payment, err := svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodTransbank,
	})
	require.NoError(t, err)

	txID := "TBK-123"
	require.NoError(t, svc.MarkPaid(context.Background(), payment.ID, &txID))

	var updated models.Payment
	require.NoError(t, conn.Where("id = ?", payment.ID).First(&updated).Error)
	assert.Equal(t, enums.PaymentStatusPaid, updated.Status)
	require.NotNil(t, updated.PaidAt)
	require.NotNil(t, updated.TransactionID)
	assert.Equal(t, "TBK-123", *updated.TransactionID)

	var reloaded models.Order
	require.NoError(t, conn.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, enums.PaymentStatusPaid, reloaded.PaymentStatus)
	require.NotNil(t, reloaded.PaymentReference)
	assert.Equal(t, "TBK-123", *reloaded.PaymentReference)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	svc := newPaymentService(t, conn)
	order := createPendingOrder(t, conn)

	payment, err := svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodTransfer,
	})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(context.Background(), payment.ID, nil))
	require.NoError(t, svc.MarkPaid(context.Background(), payment.ID, nil))

	var eventCount int64
	require.NoError(t, conn.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ? AND event_type = ?", order.ID, enums.EventPaymentPaid).
		Count(&eventCount).Error)
	assert.Equal(t, int64(1), eventCount, "replayed callback must not emit another event")
}

func TestCreateAttemptRejectedOnceOrderPaid(t *testing.T) {
	conn := setupPaymentsTestDB(t)
	svc := newPaymentService(t, conn)
	order := createPendingOrder(t, conn)

	payment, err := svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodCash,
	})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(context.Background(), payment.ID, nil))

	_, err = svc.CreateAttempt(context.Background(), CreateAttemptInput{
		OrderID: order.ID,
		Method:  enums.PaymentMethodCash,
	})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}
