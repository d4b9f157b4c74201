package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/catalog"
	"github.com/feriavirtual/feriavirtual-backend/internal/coupons"
	"github.com/feriavirtual/feriavirtual-backend/internal/notifications"
	"github.com/feriavirtual/feriavirtual-backend/internal/payouts"
	"github.com/feriavirtual/feriavirtual-backend/internal/totals"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/metrics"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
)

// Service drives checkout: totals preview and the order-committing
// transaction.
type Service interface {
	PreviewTotals(ctx context.Context, sessionID uuid.UUID) (*totals.Summary, error)
	CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type service struct {
	client        *db.Client
	repo          Repository
	catalogRepo   catalog.Repository
	payoutRepo    payouts.Repository
	aggregator    totals.Aggregator
	couponRes     coupons.Resolver
	cartStore     cartsession.Store
	notifier      notifications.Service
	events        *outbox.Service
	logg          *logger.Logger
	metrics       *metrics.CheckoutMetrics
	commissionVAT decimal.Decimal
	now           func() time.Time
}

// NewService wires the checkout service.
func NewService(
	client *db.Client,
	repo Repository,
	catalogRepo catalog.Repository,
	payoutRepo payouts.Repository,
	aggregator totals.Aggregator,
	couponRes coupons.Resolver,
	cartStore cartsession.Store,
	notifier notifications.Service,
	events *outbox.Service,
	logg *logger.Logger,
	checkoutMetrics *metrics.CheckoutMetrics,
	checkoutCfg config.CheckoutConfig,
	now func() time.Time,
) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if payoutRepo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if aggregator == nil {
		return nil, fmt.Errorf("totals aggregator required")
	}
	if couponRes == nil {
		return nil, fmt.Errorf("coupon resolver required")
	}
	if cartStore == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification service required")
	}
	commissionVAT, err := decimal.NewFromString(checkoutCfg.CommissionVATPercent)
	if err != nil {
		return nil, fmt.Errorf("invalid commission vat percent %q: %w", checkoutCfg.CommissionVATPercent, err)
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		client:        client,
		repo:          repo,
		catalogRepo:   catalogRepo,
		payoutRepo:    payoutRepo,
		aggregator:    aggregator,
		couponRes:     couponRes,
		cartStore:     cartStore,
		notifier:      notifier,
		events:        events,
		logg:          logg,
		metrics:       checkoutMetrics,
		commissionVAT: commissionVAT,
		now:           now,
	}, nil
}

// PreviewTotals recomputes the session's totals from live catalog state.
func (s *service) PreviewTotals(ctx context.Context, sessionID uuid.UUID) (*totals.Summary, error) {
	if sessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	return s.loadSummary(ctx, sessionID)
}

// CreateOrder converts the session cart into a committed order. Every row of
// the order graph lands in one transaction; the cart is cleared and store
// alerts go out only after commit.
func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	start := s.now()

	if input.SessionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if strings.TrimSpace(input.Customer.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.Customer.Email) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	summary, err := s.loadSummary(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	// Empty carts never reach the database.
	if summary.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	storeIDs := summary.StoreIDs()
	stores, err := s.catalogRepo.GetStoresByIDs(ctx, storeIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading stores")
	}
	storesByID := make(map[uuid.UUID]models.Store, len(stores))
	for _, st := range stores {
		storesByID[st.ID] = st
	}

	order := s.buildOrder(input, summary)
	payoutRows := s.buildPayouts(order, summary, storesByID, start)
	notes := s.notifier.Build(order, stores, summary.Stores)

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return fmt.Errorf("creating order: %w", err)
		}
		payoutTx := s.payoutRepo.WithTx(tx)
		for i := range payoutRows {
			if err := payoutTx.Create(ctx, &payoutRows[i]); err != nil {
				return fmt.Errorf("creating payout: %w", err)
			}
		}
		if err := s.repo.WithTx(tx).CreateNotifications(ctx, notes); err != nil {
			return fmt.Errorf("creating notifications: %w", err)
		}
		if s.events == nil {
			return nil
		}
		storeIDStrings := make([]string, 0, len(storeIDs))
		for _, id := range storeIDs {
			storeIDStrings = append(storeIDStrings, id.String())
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: outbox.OrderCreatedData{
				OrderID:  order.ID.String(),
				Total:    order.Total.StringFixed(2),
				StoreIDs: storeIDStrings,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting order")
	}

	s.afterCommit(ctx, input.SessionID, order, stores, notes)
	s.metrics.IncOrdersCreated()
	s.metrics.AddPayoutsScheduled(len(payoutRows))
	s.metrics.ObserveCheckoutDuration(s.now().Sub(start))

	return &CreateOrderResult{
		OrderID:          order.ID,
		Subtotal:         order.Subtotal.StringFixed(2),
		Discount:         order.Discount.StringFixed(2),
		Shipping:         order.Shipping.StringFixed(2),
		Total:            order.Total.StringFixed(2),
		PayoutsScheduled: len(payoutRows),
	}, nil
}

func (s *service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) loadSummary(ctx context.Context, sessionID uuid.UUID) (*totals.Summary, error) {
	cart, err := s.cartStore.GetCart(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	selections, err := s.cartStore.GetShippingSelections(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading shipping selections")
	}
	overrides, err := s.cartStore.GetDeliveryOverrides(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading delivery overrides")
	}
	code, err := s.cartStore.GetCouponCode(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading coupon code")
	}
	coupon, err := s.couponRes.Resolve(ctx, code)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving coupon")
	}

	summary, err := s.aggregator.Compute(ctx, totals.ComputeInput{
		Cart:               cart,
		ShippingSelections: selections,
		DeliveryOverrides:  overrides,
		Coupon:             coupon,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "computing totals")
	}
	return summary, nil
}

// buildOrder snapshots the summary into the order graph. Ids are assigned
// up front so the outbox event and payout rows can reference them before
// insert.
func (s *service) buildOrder(input CreateOrderInput, summary *totals.Summary) *models.Order {
	order := &models.Order{
		ID:              uuid.New(),
		CustomerName:    strings.TrimSpace(input.Customer.Name),
		CustomerEmail:   strings.TrimSpace(input.Customer.Email),
		CustomerPhone:   input.Customer.Phone,
		CustomerAddress: input.Customer.Address,
		CustomerCity:    input.Customer.City,
		CustomerNotes:   input.Customer.Notes,
		Subtotal:        summary.Subtotal,
		Discount:        summary.Discount,
		Shipping:        summary.Shipping,
		Total:           summary.Total,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   enums.PaymentStatusPending,
	}
	if summary.Coupon != nil {
		couponID := summary.Coupon.ID
		order.CouponID = &couponID
	}

	for _, item := range summary.Items {
		order.Items = append(order.Items, models.OrderItem{
			ID:                  uuid.New(),
			OrderID:             order.ID,
			ProductID:           item.ProductID,
			StoreID:             item.StoreID,
			ProductName:         item.ProductName,
			Qty:                 item.Qty,
			UnitPrice:           item.UnitPrice,
			ShippingMethodID:    item.SelectedMethodID,
			ShippingCostPerUnit: item.ShippingCostPerUnit,
			LineSubtotal:        item.LineSubtotal,
			LineShipping:        item.LineShipping,
			LineTotal:           item.LineTotal,
			DeliveryAddress:     item.DeliveryAddress,
			DeliveryCity:        item.DeliveryCity,
		})
	}

	for _, storeID := range summary.StoreIDs() {
		bucket := summary.Stores[storeID]
		order.StoreTotals = append(order.StoreTotals, models.OrderStoreTotal{
			ID:       uuid.New(),
			OrderID:  order.ID,
			StoreID:  storeID,
			Subtotal: bucket.Subtotal,
			Discount: bucket.Discount,
			Shipping: bucket.Shipping,
			Total:    bucket.Total,
		})
	}
	return order
}

func (s *service) buildPayouts(order *models.Order, summary *totals.Summary, storesByID map[uuid.UUID]models.Store, now time.Time) []models.StorePayout {
	rows := make([]models.StorePayout, 0, len(summary.Stores))
	for _, storeID := range summary.StoreIDs() {
		bucket := summary.Stores[storeID]
		st := storesByID[storeID]
		breakdown := payouts.Calculate(payouts.CalcInput{
			Subtotal:              bucket.Subtotal,
			Discount:              bucket.Discount,
			Total:                 bucket.Total,
			CommissionRatePercent: st.CommissionRatePercent,
			CommissionMinAmount:   st.CommissionMinAmount,
			TaxRatePercent:        st.TaxRatePercent,
			PayoutDelayDays:       st.PayoutDelayDays,
			CommissionVATPercent:  s.commissionVAT,
		}, now)
		rows = append(rows, models.StorePayout{
			ID:                    uuid.New(),
			OrderID:               order.ID,
			StoreID:               storeID,
			Amount:                bucket.Total,
			Status:                enums.PayoutStatusScheduled,
			ScheduledAt:           breakdown.ScheduledAt,
			CommissionPercent:     breakdown.CommissionPercent,
			CommissionMin:         breakdown.CommissionMin,
			CommissionAmount:      breakdown.CommissionAmount,
			CommissionVATPercent:  breakdown.CommissionVATPercent,
			CommissionVATAmount:   breakdown.CommissionVATAmount,
			CommissionGrossAmount: breakdown.CommissionGrossAmount,
			NetAmount:             breakdown.NetAmount,
		})
	}
	return rows
}

// afterCommit runs the non-transactional tail of checkout. Failures here are
// logged and swallowed; the order already stands.
func (s *service) afterCommit(ctx context.Context, sessionID uuid.UUID, order *models.Order, stores []models.Store, notes []models.OrderNotification) {
	logCtx := ctx
	if s.logg != nil {
		logCtx = s.logg.WithFields(ctx, map[string]any{
			"order_id":   order.ID.String(),
			"session_id": sessionID.String(),
		})
	}

	if err := s.cartStore.Clear(ctx, sessionID, order.ID); err != nil && s.logg != nil {
		s.logg.Warn(logCtx, "clearing cart session failed: "+err.Error())
	}
	if err := s.notifier.Dispatch(ctx, order, stores, notes); err != nil && s.logg != nil {
		s.logg.Warn(logCtx, "store notifications incomplete: "+err.Error())
	}
	if s.logg != nil {
		s.logg.Info(logCtx, "order created")
	}
}
