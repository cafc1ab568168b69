package api

import (
	"carcatalog/internal/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter creates and configures the HTTP router
func NewRouter(handler *Handler, authenticator auth.Authenticator, corsOrigins []string, logger *zap.Logger) *chi.Mux {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware(corsOrigins))

	r.Get("/health", handler.Health)

	// Change streams
	r.Group(func(r chi.Router) {
		r.Use(optionalAuthMiddleware(authenticator, logger))

		r.Get("/events", handler.StreamEvents)
		r.Get("/events/{collection}", handler.StreamCollectionEvents)
	})

	// Inventory
	r.Route("/cars", func(r chi.Router) {
		r.Get("/", handler.ListCars)
		r.Post("/", handler.CreateCar)
		r.Get("/{id}", handler.GetCar)
		r.Put("/{id}", handler.UpdateCar)
		r.Delete("/{id}", handler.DeleteCar)
		r.Get("/{id}/average-rating", handler.AverageRating)
	})

	r.Route("/sales", func(r chi.Router) {
		r.Get("/", handler.ListSales)
		r.Get("/annual", handler.AnnualSales)
		r.Get("/top-models", handler.TopModels)
		r.Get("/total-by-year", handler.SalesByYear)
	})

	// Accounts
	r.Post("/register", handler.Register)
	r.Get("/login", handler.Login)
	r.Post("/login", handler.Login)

	r.Route("/favorites/{username}", func(r chi.Router) {
		r.Get("/", handler.GetFavorites)
		r.Post("/add/{carID}", handler.AddFavorite)
		r.Delete("/remove/{carID}", handler.RemoveFavorite)
	})

	r.Get("/reviews/{id}", handler.CarReviews)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware(authenticator, logger))

		r.Post("/reviews", handler.CreateReview)
		r.Put("/reviews/{id}", handler.UpdateReview)
		r.Delete("/reviews/{id}", handler.DeleteReview)

		r.Get("/bookings", handler.ListBookings)
		r.Post("/bookings", handler.CreateBooking)
		r.Delete("/bookings/{id}", handler.CancelBooking)
		r.Get("/user/bookings", handler.UserBookings)

		// Admin only
		r.With(requireAdmin).Get("/admin/bookings", handler.AdminBookings)
	})

	return r
}
