package payouts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/metrics"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
)

// Service exposes payout settlement operations.
type Service interface {
	MarkPaid(ctx context.Context, payoutID uuid.UUID, method, reference *string) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]ListedPayout, error)
}

// ListedPayout is the read model returned to callers.
type ListedPayout struct {
	ID          uuid.UUID
	StoreID     uuid.UUID
	Amount      string
	NetAmount   string
	Status      enums.PayoutStatus
	ScheduledAt time.Time
	PaidAt      *time.Time
}

type service struct {
	client  *db.Client
	repo    Repository
	events  *outbox.Service
	logg    *logger.Logger
	metrics *metrics.CheckoutMetrics
	now     func() time.Time
}

// NewService wires the payout service.
func NewService(client *db.Client, repo Repository, events *outbox.Service, logg *logger.Logger, checkoutMetrics *metrics.CheckoutMetrics, now func() time.Time) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payout repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		client:  client,
		repo:    repo,
		events:  events,
		logg:    logg,
		metrics: checkoutMetrics,
		now:     now,
	}, nil
}

// MarkPaid transitions a payout scheduled → paid exactly once. Re-marking a
// settled payout succeeds without any further effect.
func (s *service) MarkPaid(ctx context.Context, payoutID uuid.UUID, method, reference *string) error {
	if payoutID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payout id is required")
	}

	payout, err := s.repo.GetByID(ctx, payoutID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payout")
	}
	if payout == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payout not found")
	}
	if payout.Status == enums.PayoutStatusPaid {
		return nil
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		changed, err := s.repo.WithTx(tx).MarkPaid(ctx, payoutID, s.now(), method, reference)
		if err != nil {
			return err
		}
		if !changed {
			// Lost the race to another marker; nothing left to do.
			return nil
		}
		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPayoutPaid,
			AggregateType: enums.AggregatePayout,
			AggregateID:   payoutID,
			Version:       1,
			Data: outbox.PayoutPaidData{
				PayoutID:  payoutID.String(),
				OrderID:   payout.OrderID.String(),
				StoreID:   payout.StoreID.String(),
				Method:    method,
				Reference: reference,
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking payout paid")
	}

	s.metrics.IncPayoutsPaid()
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"payout_id": payoutID.String(),
			"order_id":  payout.OrderID.String(),
		})
		s.logg.Info(logCtx, "payout marked paid")
	}
	return nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]ListedPayout, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payouts, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payouts")
	}
	listed := make([]ListedPayout, 0, len(payouts))
	for _, payout := range payouts {
		listed = append(listed, ListedPayout{
			ID:          payout.ID,
			StoreID:     payout.StoreID,
			Amount:      payout.Amount.StringFixed(2),
			NetAmount:   payout.NetAmount.StringFixed(2),
			Status:      payout.Status,
			ScheduledAt: payout.ScheduledAt,
			PaidAt:      payout.PaidAt,
		})
	}
	return listed, nil
}
