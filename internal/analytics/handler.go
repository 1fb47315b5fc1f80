package analytics

import (
	"net/http"
	"strconv"
	"time"

	"doorparts-be/internal/httpx"

	"github.com/gorilla/mux"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/analytics/summary", h.summary).Methods(http.MethodGet)
	admin.HandleFunc("/analytics/revenue", h.revenue).Methods(http.MethodGet)
	admin.HandleFunc("/analytics/orders-by-status", h.ordersByStatus).Methods(http.MethodGet)
	admin.HandleFunc("/analytics/top-products", h.topProducts).Methods(http.MethodGet)
}

// parseRange reads from/to query params (RFC 3339 date), defaulting to the
// trailing 30 days.
func parseRange(r *http.Request) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := r.URL.Query().Get("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}
	return from, to
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)
	s, err := h.repo.Summarize(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load summary")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, s)
}

func (h *Handler) revenue(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)
	points, err := h.repo.RevenueOverRange(r.Context(), from, to)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load revenue")
		return
	}
	if points == nil {
		points = []*RevenuePoint{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"points": points})
}

func (h *Handler) ordersByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.repo.OrdersByStatus(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load order counts")
		return
	}
	if counts == nil {
		counts = []*StatusCount{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"counts": counts})
}

func (h *Handler) topProducts(w http.ResponseWriter, r *http.Request) {
	from, to := parseRange(r)

	limit := int32(10)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}

	products, err := h.repo.TopProducts(r.Context(), from, to, limit)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load top products")
		return
	}
	if products == nil {
		products = []*TopProduct{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"products": products})
}
