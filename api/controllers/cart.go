package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/feriavirtual/feriavirtual-backend/api/middleware"
	"github.com/feriavirtual/feriavirtual-backend/api/responses"
	"github.com/feriavirtual/feriavirtual-backend/api/validators"
	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	pkgerrors "github.com/feriavirtual/feriavirtual-backend/pkg/errors"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
)

type cartItemPayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,min=1"`
}

type cartUpdateRequest struct {
	Items []cartItemPayload `json:"items" validate:"dive"`
}

// CartFetch returns the current cart as a fully priced totals preview.
func CartFetch(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		summary, err := svc.PreviewTotals(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSummaryResponse(summary))
	}
}

// CartUpdate replaces the session cart wholesale. An empty items list clears
// it.
func CartUpdate(store cartsession.Store, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload cartUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := cartsession.Cart{}
		for _, item := range payload.Items {
			cart[item.ProductID] = item.Qty
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.SetCart(r.Context(), sessionID, cart); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart"))
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

type shippingSelectionPayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	MethodID  int64     `json:"method_id" validate:"required"`
}

type shippingSelectionRequest struct {
	Selections []shippingSelectionPayload `json:"selections" validate:"dive"`
}

// CartShippingUpdate replaces the per-product shipping method choices.
func CartShippingUpdate(store cartsession.Store, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload shippingSelectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		selections := cartsession.ShippingSelections{}
		for _, selection := range payload.Selections {
			selections[selection.ProductID] = selection.MethodID
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.SetShippingSelections(r.Context(), sessionID, selections); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving shipping selections"))
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

type deliveryOverridePayload struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
}

type deliveryOverrideRequest struct {
	Overrides []deliveryOverridePayload `json:"overrides" validate:"dive"`
}

// CartDeliveryUpdate replaces the per-product delivery address overrides.
func CartDeliveryUpdate(store cartsession.Store, svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil || svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart store unavailable"))
			return
		}

		var payload deliveryOverrideRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overrides := cartsession.DeliveryOverrides{}
		for _, override := range payload.Overrides {
			overrides[override.ProductID] = cartsession.Delivery{
				Address: override.Address,
				City:    override.City,
			}
		}

		sessionID := middleware.SessionIDFromContext(r.Context())
		if err := store.SetDeliveryOverrides(r.Context(), sessionID, overrides); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving delivery overrides"))
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
