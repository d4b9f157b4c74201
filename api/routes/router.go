package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/feriavirtual/feriavirtual-backend/api/controllers"
	"github.com/feriavirtual/feriavirtual-backend/api/middleware"
	"github.com/feriavirtual/feriavirtual-backend/internal/cartsession"
	"github.com/feriavirtual/feriavirtual-backend/internal/coupons"
	"github.com/feriavirtual/feriavirtual-backend/internal/orders"
	"github.com/feriavirtual/feriavirtual-backend/internal/payments"
	"github.com/feriavirtual/feriavirtual-backend/internal/payouts"
	"github.com/feriavirtual/feriavirtual-backend/pkg/config"
	"github.com/feriavirtual/feriavirtual-backend/pkg/logger"
	pkgredis "github.com/feriavirtual/feriavirtual-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Registry *prometheus.Registry

	CartStore      cartsession.Store
	CouponResolver coupons.Resolver
	Checkout       orders.Service
	Payments       payments.Service
	Payouts        payouts.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(deps.Config.Session, deps.Logger))
		r.Use(middleware.Idempotency(deps.Redis, deps.Logger))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Checkout, deps.Logger))
			r.Put("/", controllers.CartUpdate(deps.CartStore, deps.Checkout, deps.Logger))
			r.Put("/shipping", controllers.CartShippingUpdate(deps.CartStore, deps.Checkout, deps.Logger))
			r.Put("/delivery", controllers.CartDeliveryUpdate(deps.CartStore, deps.Checkout, deps.Logger))
			r.Post("/coupon", controllers.CouponApply(deps.CouponResolver, deps.CartStore, deps.Checkout, deps.Logger))
			r.Delete("/coupon", controllers.CouponClear(deps.CartStore, deps.Checkout, deps.Logger))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/totals", controllers.CheckoutTotals(deps.Checkout, deps.Logger))
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, deps.Logger))
		})

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", controllers.OrderFetch(deps.Checkout, deps.Logger))
			r.Get("/payments", controllers.PaymentList(deps.Payments, deps.Logger))
			r.Post("/payments", controllers.PaymentCreate(deps.Payments, deps.Logger))
			r.Get("/payouts", controllers.PayoutList(deps.Payouts, deps.Logger))
		})

		r.Post("/payments/{paymentID}/paid", controllers.PaymentMarkPaid(deps.Payments, deps.Logger))
		r.Post("/payouts/{payoutID}/paid", controllers.PayoutMarkPaid(deps.Payouts, deps.Logger))
	})

	return r
}
