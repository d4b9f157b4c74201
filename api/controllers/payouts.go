package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/api/validators"
	"github.com/feriavirtual/feriavirtual-backend/internal/payouts"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

type payoutResponse struct {
	ID          uuid.UUID  `json:"id"`
	StoreID     uuid.UUID  `json:"store_id"`
	Amount      string     `json:"amount"`
	NetAmount   string     `json:"net_amount"`
	Status      string     `json:"status"`
	ScheduledAt time.Time  `json:"scheduled_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// PayoutList returns the payout schedule of one order.
func PayoutList(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		listed, err := svc.ListByOrderID(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := make([]payoutResponse, 0, len(listed))
		for _, payout := range listed {
			resp = append(resp, payoutResponse{
				ID:          payout.ID,
				StoreID:     payout.StoreID,
				Amount:      payout.Amount,
				NetAmount:   payout.NetAmount,
				Status:      payout.Status.String(),
				ScheduledAt: payout.ScheduledAt,
				PaidAt:      payout.PaidAt,
			})
		}
		responses.WriteSuccess(w, resp)
	}
}

type payoutPaidRequest struct {
	Method    *string `json:"method,omitempty"`
	Reference *string `json:"reference,omitempty"`
}

// PayoutMarkPaid settles a scheduled payout. Safe to replay.
func PayoutMarkPaid(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payout service unavailable"))
			return
		}

		payoutID, err := uuid.Parse(chi.URLParam(r, "payoutID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payout id"))
			return
		}

		var payload payoutPaidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.MarkPaid(r.Context(), payoutID, payload.Method, payload.Reference); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "paid"})
	}
}
