package httpapi

import (
	"github.com/54ba/midostore-sub004/internal/middleware"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/platform/metrics"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the catalog routes. Everything under /api/buyer is
// public except the /me subtree, which requires a valid JWT.
func NewRouter(h *Handler, log *logger.Logger, mm *metrics.MetricsManager, jwtSecret string) *chi.Mux {
	mux := chi.NewRouter()

	mux.Use(chimiddleware.Recoverer)
	mux.Use(middleware.RequestLogger(log))
	mux.Use(middleware.HTTPMetrics(mm))

	mux.Get("/health", h.HandleHealth)

	mux.Route("/api/buyer", func(r chi.Router) {
		r.Get("/products", h.HandleProductsByCategory)
		r.Get("/products/search", h.HandleSearchProducts)
		r.Get("/products/featured", h.HandleFeaturedProducts)
		r.Get("/products/comparison/{baseProductId}", h.HandleProductComparison)
		r.Get("/sellers/top", h.HandleTopSellers)
		r.Get("/sellers/{sellerId}/products", h.HandleSellerProducts)
		r.Get("/categories", h.HandleCategories)

		r.Group(func(auth chi.Router) {
			auth.Use(middleware.JWTAuth(jwtSecret))
			auth.Get("/me/recommendations", h.HandleRecommendations)
			auth.Get("/me/interactions", h.HandleRecentInteractions)
			auth.Post("/me/interactions", h.HandleRecordInteraction)
			auth.Get("/me/preferences", h.HandleGetPreferences)
			auth.Put("/me/preferences", h.HandleUpdatePreferences)
		})
	})

	return mux
}
