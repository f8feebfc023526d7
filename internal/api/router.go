package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/fundspark/checkout-service/internal/api/handlers"
	"github.com/fundspark/checkout-service/internal/api/middleware"
	"github.com/fundspark/checkout-service/internal/service"
)

// NewRouter builds the HTTP router for the checkout service.
func NewRouter(coupons *service.CouponService, payments *service.PaymentService) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID, chimiddleware.RealIP, chimiddleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Timeout(15 * time.Second))

	cardHandler := handlers.NewCardHandler()
	couponHandler := handlers.NewCouponHandler(coupons)
	paymentHandler := handlers.NewPaymentHandler(payments)

	r.Post("/cards/validate", cardHandler.Validate)

	r.Route("/coupons", func(r chi.Router) {
		r.Get("/active", couponHandler.Active)
		r.Post("/validate", couponHandler.Validate)
	})

	r.Get("/packages", paymentHandler.Packages)
	r.Post("/payments/process", paymentHandler.Process)

	// Admin endpoints
	r.Route("/admin", func(r chi.Router) {
		r.Post("/coupons", couponHandler.Create)
		r.Get("/transactions/{id}", paymentHandler.Transaction)
	})

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
