package controllers

import (
	"net/http"

	"github.com/feriavirtual/feriavirtual-backend/api/middleware"
	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/api/validators"
	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/coupons"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

type couponApplyRequest struct {
	Code string `json:"code" validate:"required"`
}

// CouponApply validates a coupon code and stores it on the session. Applying
// a new coupon replaces the previous one.
func CouponApply(resolver coupons.Resolver, store cartsession.Store, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resolver == nil || store == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponApplyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := resolver.Resolve(r.Context(), payload.Code)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving coupon"))
			return
		}
		if coupon == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "coupon is invalid or expired"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.SetCouponCode(r.Context(), sessionID, coupon.Code); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving coupon"))
			return
		}

		summary, err := svc.PreviewTotals(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

// CouponClear removes the session coupon.
func CouponClear(store cartsession.Store, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.ClearCouponCode(r.Context(), sessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing coupon"))
			return
		}

		summary, err := svc.PreviewTotals(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}
