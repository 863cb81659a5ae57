package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delivery-dispatch/internal/http/handlers"
)

// Middlewares holds the optional cross-cutting middleware used by New.
// Nil fields are skipped.
type Middlewares struct {
	Observability func(http.Handler) http.Handler
	AcceptLimit   func(http.Handler) http.Handler // rate limit on the courier acceptance link
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, restaurant *handlers.RestaurantOrderHandler, courier *handlers.CourierHandler, mw Middlewares) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if mw.Observability != nil {
		r.Use(mw.Observability)
	}
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/restaurant/orders/{orderId}", func(r chi.Router) {
			r.Post("/accept", restaurant.Accept)
			r.Post("/reject", restaurant.Reject)
		})

		r.Route("/couriers/{courierId}", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				// SMS links land here; throttle per client IP.
				if mw.AcceptLimit != nil {
					r.Use(mw.AcceptLimit)
				}
				r.Post("/accept-order/{orderId}", courier.AcceptOrder)
				r.Get("/accept-order/{orderId}", courier.AcceptOrderLink)
			})

			r.Post("/pickup-order/{orderId}", courier.PickupOrder)
			r.Post("/deliver-order/{orderId}", courier.DeliverOrder)
			r.Put("/location", courier.UpdateLocation)
		})
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
