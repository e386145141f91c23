package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"welwexpress/internal/auth"
	"welwexpress/internal/catalog"
	"welwexpress/internal/checkout"
	"welwexpress/internal/domain"
	ordercontroller "welwexpress/internal/order/controller"
	"welwexpress/internal/store"
	"welwexpress/internal/user"
)

// NewRouter mounts every feature under /api/v1. The payment return URLs
// (/success, /cancel) are unauthenticated because the payment provider
// redirects the browser there without a bearer token.
func NewRouter(
	users *user.Controller,
	stores *store.Controller,
	products *catalog.Controller,
	orders *ordercontroller.Controller,
	checkouts *checkout.Controller,
	authMW *auth.Middleware,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", users.HandleRegisterBuyer)
		r.Post("/auth/seller-register", users.HandleRegisterSeller)
		r.Post("/auth/login", users.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireRole(domain.RoleSeller))
			r.Post("/auth/employee-register", users.HandleRegisterEmployee)
		})

		r.Route("/users/{id}", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Get("/", users.HandleGetUser)
			r.Put("/", users.HandleUpdateUser)
			r.Delete("/", users.HandleDeleteUser)
		})

		r.Route("/stores", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Post("/", stores.HandleRegisterStore)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", stores.HandleGetStore)
				r.Put("/", stores.HandleUpdateStore)
				r.Delete("/", stores.HandleDeleteStore)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Use(authMW.RequireRole(domain.RoleSeller))
			r.Post("/", products.HandleCreateProduct)
			r.Get("/", products.HandleListProducts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", products.HandleGetProduct)
				r.Put("/", products.HandleUpdateProduct)
				r.Delete("/", products.HandleDeleteProduct)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authMW.Authenticate)
			r.Post("/", orders.HandleCreateOrder)
			r.Get("/", orders.HandleListOrders)
			r.With(authMW.RequireRole(domain.RoleSeller)).Get("/seller", orders.HandleListOrdersBySeller)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", orders.HandleGetOrder)
				r.Put("/", orders.HandleUpdateOrder)
				r.Delete("/", orders.HandleDeleteOrder)
			})
		})

		r.With(authMW.Authenticate).Post("/checkout", checkouts.HandleCheckout)
		r.Get("/success", checkouts.HandlePaymentSuccess)
		r.Get("/cancel", checkouts.HandlePaymentCancel)
	})

	logger.Info("router configured")

	return r
}
