package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/feriavirtual/feriavirtual-backend/internal/totals"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/mailer"
	"github.com/feriavirtual/feriavirtual-backend/pkg/metrics"
)

// Service builds and delivers per-store order alerts. Building happens inside
// the checkout transaction so the audit rows commit with the order; delivery
// happens after commit and is best-effort.
type Service interface {
	Build(order *models.Order, stores []models.Store, buckets map[uuid.UUID]*totals.StoreBucket) []models.OrderNotification
	Dispatch(ctx context.Context, order *models.Order, stores []models.Store, notes []models.OrderNotification) error
}

type service struct {
	mail         mailer.Mailer
	emailEnabled bool
	logg         *logger.Logger
	metrics      *metrics.CheckoutMetrics
}

// NewService wires the notification service. A nil mailer forces every alert
// onto the log channel regardless of the platform flag.
func NewService(mail mailer.Mailer, cfg config.CheckoutConfig, logg *logger.Logger, checkoutMetrics *metrics.CheckoutMetrics) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		mail:         mail,
		emailEnabled: cfg.EmailNotificationsEnabled && mail != nil,
		logg:         logg,
		metrics:      checkoutMetrics,
	}, nil
}

// Build produces one notification row per store bucket. A store gets the
// email channel only when it has a contact email and the platform flag is on.
func (s *service) Build(order *models.Order, stores []models.Store, buckets map[uuid.UUID]*totals.StoreBucket) []models.OrderNotification {
	storesByID := make(map[uuid.UUID]models.Store, len(stores))
	for _, st := range stores {
		storesByID[st.ID] = st
	}

	notes := make([]models.OrderNotification, 0, len(buckets))
	for storeID, bucket := range buckets {
		channel := enums.NotificationChannelLog
		st, known := storesByID[storeID]
		if known && s.emailEnabled && st.ContactEmail != nil && *st.ContactEmail != "" {
			channel = enums.NotificationChannelEmail
		}
		notes = append(notes, models.OrderNotification{
			ID:      uuid.New(),
			OrderID: order.ID,
			StoreID: storeID,
			Channel: channel,
			Content: buildContent(order, st.Name, bucket),
		})
	}
	return notes
}

// Dispatch delivers the built notifications. Mail failures are logged,
// counted and aggregated for the caller's log line; the order stands
// regardless.
func (s *service) Dispatch(ctx context.Context, order *models.Order, stores []models.Store, notes []models.OrderNotification) error {
	storesByID := make(map[uuid.UUID]models.Store, len(stores))
	for _, st := range stores {
		storesByID[st.ID] = st
	}

	var dispatchErr error
	for _, note := range notes {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"store_id": note.StoreID.String(),
			"channel":  note.Channel.String(),
		})

		if note.Channel != enums.NotificationChannelEmail {
			s.logg.Info(logCtx, note.Content)
			continue
		}

		st := storesByID[note.StoreID]
		if st.ContactEmail == nil || *st.ContactEmail == "" {
			s.logg.Info(logCtx, note.Content)
			continue
		}
		subject := fmt.Sprintf("New order %s", order.ID)
		if err := s.mail.Send(ctx, *st.ContactEmail, subject, note.Content); err != nil {
			s.metrics.IncNotificationFailure(enums.NotificationChannelEmail.String())
			s.logg.Warn(logCtx, "store order email failed: "+err.Error())
			dispatchErr = multierr.Append(dispatchErr, fmt.Errorf("store %s: %w", note.StoreID, err))
		}
	}
	return dispatchErr
}

func buildContent(order *models.Order, storeName string, bucket *totals.StoreBucket) string {
	units := 0
	for _, item := range bucket.Items {
		units += item.Qty
	}
	name := storeName
	if name == "" {
		name = bucket.StoreID.String()
	}
	return fmt.Sprintf(
		"New order %s for %s: %d item(s), %d unit(s), total %s (subtotal %s, discount %s, shipping %s). Customer: %s <%s>.",
		order.ID, name, len(bucket.Items), units,
		bucket.Total.StringFixed(2), bucket.Subtotal.StringFixed(2),
		bucket.Discount.StringFixed(2), bucket.Shipping.StringFixed(2),
		order.CustomerName, order.CustomerEmail,
	)
}
