package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	custommiddleware "github.com/avtomir/autoservice-system/internal/middleware"
)

func pathParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// SetupRouter настраивает HTTP-маршруты и middleware сервиса автосервиса.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/parts", h.GetCatalogParts)
			r.Get("/services", h.GetCatalogServices)
		})

		// Корзина анонимна и доступна без авторизации.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{id}", h.UpdateCartItem)
			r.Delete("/items/{id}", h.RemoveCartItem)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware)

			r.Route("/account", func(r chi.Router) {
				r.Get("/cars", h.GetCars)
				r.Post("/cars", h.AddCar)
				r.Delete("/cars/{id}", h.RemoveCar)

				r.Get("/repairs", h.GetRepairHistory)

				r.Get("/payment-methods", h.GetPaymentMethods)
				r.Post("/payment-methods", h.AddPaymentMethod)
				r.Delete("/payment-methods/{id}", h.RemovePaymentMethod)
				r.Post("/payment-methods/{id}/default", h.SetDefaultPaymentMethod)
			})

			r.Route("/repair", func(r chi.Router) {
				r.Post("/", h.StartRepair)
				r.Get("/{id}", h.GetRepair)
				r.Post("/{id}/service", h.SelectRepairService)
				r.Post("/{id}/car", h.SelectRepairCar)
				r.Post("/{id}/car/new", h.CreateRepairCar)
				r.Post("/{id}/parts", h.AddRepairPart)
				r.Patch("/{id}/parts/{partId}", h.UpdateRepairPart)
				r.Delete("/{id}/parts/{partId}", h.RemoveRepairPart)
				r.Post("/{id}/back", h.RepairBack)
				r.Post("/{id}/submit", h.SubmitRepair)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
