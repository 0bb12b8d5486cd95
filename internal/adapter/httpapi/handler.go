package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/54ba/midostore-sub004/internal/domain"
	"github.com/54ba/midostore-sub004/internal/middleware"
	"github.com/54ba/midostore-sub004/internal/platform/logger"
	"github.com/54ba/midostore-sub004/internal/usecase"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler exposes the catalog and buyer usecases over HTTP/JSON.
type Handler struct {
	catalogUC *usecase.CatalogUsecase
	buyerUC   *usecase.BuyerUsecase
	logger    *logger.Logger
}

func NewHandler(catalogUC *usecase.CatalogUsecase, buyerUC *usecase.BuyerUsecase, log *logger.Logger) *Handler {
	return &Handler{
		catalogUC: catalogUC,
		buyerUC:   buyerUC,
		logger:    log.Named("http_handler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// respondWithError maps domain errors to HTTP statuses. Repository
// failures render 503 so clients can tell an outage from an empty catalog.
func (h *Handler) respondWithError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrRepository):
		respondWithJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "catalog temporarily unavailable"})
	default:
		h.logger.Error("Unhandled error in HTTP handler", zap.Error(err))
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

// parseInt64Query reads an optional numeric query parameter; absence or
// garbage yields the fallback, the usecases clamp ranges.
func parseInt64Query(r *http.Request, name string, fallback int64) int64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return v
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Public catalog surface ---

func (h *Handler) HandleProductsByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.GetProductsByCategory(r.Context(),
		r.URL.Query().Get("category"),
		r.URL.Query().Get("sortBy"),
		parseInt64Query(r, "limit", 0),
		parseInt64Query(r, "offset", 0),
	)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleSearchProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.SearchProducts(r.Context(),
		r.URL.Query().Get("q"),
		parseInt64Query(r, "limit", 0),
		parseInt64Query(r, "offset", 0),
	)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.GetFeaturedProducts(r.Context(), parseInt64Query(r, "limit", 0))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleProductComparison(w http.ResponseWriter, r *http.Request) {
	comparison, err := h.catalogUC.GetProductComparison(r.Context(), chi.URLParam(r, "baseProductId"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, comparison)
}

func (h *Handler) HandleSellerProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalogUC.GetSellerProducts(r.Context(),
		chi.URLParam(r, "sellerId"),
		parseInt64Query(r, "limit", 0),
		parseInt64Query(r, "offset", 0),
	)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

func (h *Handler) HandleTopSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.catalogUC.GetTopSellers(r.Context(), parseInt64Query(r, "limit", 0))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sellers)
}

func (h *Handler) HandleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalogUC.GetCategories(r.Context())
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// --- Authenticated buyer surface ---

func (h *Handler) authedUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return "", false
	}
	return userID, true
}

func (h *Handler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	products, err := h.buyerUC.GetRecommendedProducts(r.Context(), userID, parseInt64Query(r, "limit", 0))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

type recordInteractionRequest struct {
	BaseProductID string `json:"baseProductId"`
	Type          string `json:"type"`
}

func (h *Handler) HandleRecordInteraction(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	var req recordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.buyerUC.RecordInteraction(r.Context(), userID, req.BaseProductID, req.Type); err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (h *Handler) HandleRecentInteractions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	interactions, err := h.buyerUC.GetRecentInteractions(r.Context(), userID, parseInt64Query(r, "limit", 0))
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, interactions)
}

func (h *Handler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	prefs, err := h.buyerUC.GetPreferences(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *Handler) HandleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authedUserID(w, r)
	if !ok {
		return
	}
	var update domain.PreferencesUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	updated, err := h.buyerUC.UpdatePreferences(r.Context(), userID, update)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}
