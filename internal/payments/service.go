package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db"
	"github.com/feriavirtual/feriavirtual-backend/pkg/db/models"
	"github.com/feriavirtual/feriavirtual-backend/pkg/enums"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	"github.com/feriavirtual/feriavirtual-backend/pkg/outbox"
)

// CreateAttemptInput starts one payment attempt against an order. The amount
// is always the order total; partial payments are not supported.
type CreateAttemptInput struct {
	OrderID          uuid.UUID
	Method           enums.PaymentMethod
	TransferCode     *string
	PickupLocationID *uuid.UUID
}

// Service exposes payment attempt operations.
type Service interface {
	CreateAttempt(ctx context.Context, input CreateAttemptInput) (*models.Payment, error)
	MarkPaid(ctx context.Context, paymentID uuid.UUID, transactionID *string) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error)
}

type service struct {
	client    *db.Client
	repo      Repository
	orderRepo orders.Repository
	events    *outbox.Service
	logg      *logger.Logger
	now       func() time.Time
}

// NewService wires the payment service.
func NewService(client *db.Client, repo Repository, orderRepo orders.Repository, events *outbox.Service, logg *logger.Logger, now func() time.Time) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	if repo == nil {
		return nil, fmt.Errorf("payment repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{
		client:    client,
		repo:      repo,
		orderRepo: orderRepo,
		events:    events,
		logg:      logg,
		now:       now,
	}, nil
}

// CreateAttempt appends a pending attempt. An order may accumulate a failed
// attempt followed by a successful one.
func (s *service) CreateAttempt(ctx context.Context, input CreateAttemptInput) (*models.Payment, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !input.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	order, err := s.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.PaymentStatus == enums.PaymentStatusPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}

	payment := &models.Payment{
		ID:               uuid.New(),
		OrderID:          order.ID,
		Method:           input.Method,
		Amount:           order.Total,
		Status:           enums.PaymentStatusPending,
		TransferCode:     input.TransferCode,
		PickupLocationID: input.PickupLocationID,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating payment")
	}
	return payment, nil
}

// MarkPaid settles an attempt and flips the order to paid. Re-marking a paid
// attempt succeeds without any further effect.
func (s *service) MarkPaid(ctx context.Context, paymentID uuid.UUID, transactionID *string) error {
	if paymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment id is required")
	}

	payment, err := s.repo.GetByID(ctx, paymentID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading payment")
	}
	if payment == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if payment.Status == enums.PaymentStatusPaid {
		return nil
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		changed, err := s.repo.WithTx(tx).MarkPaid(ctx, paymentID, s.now(), transactionID)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		if _, err := s.orderRepo.WithTx(tx).SetPaymentPaid(ctx, payment.OrderID, transactionID); err != nil {
			return err
		}
		if s.events == nil {
			return nil
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   payment.OrderID,
			Version:       1,
			Data: outbox.PaymentPaidData{
				PaymentID:     paymentID.String(),
				OrderID:       payment.OrderID.String(),
				TransactionID: transactionID,
			},
		})
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marking payment paid")
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"payment_id": paymentID.String(),
			"order_id":   payment.OrderID.String(),
		})
		s.logg.Info(logCtx, "payment marked paid")
	}
	return nil
}

func (s *service) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.Payment, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payments, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing payments")
	}
	return payments, nil
}
