package review

import (
	"errors"
	"net/http"
	"strconv"

	"doorparts-be/internal/httpx"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/products/{id}/reviews", h.listForProduct).Methods(http.MethodGet)
	public.HandleFunc("/products/{id}/reviews", h.create).Methods(http.MethodPost)

	admin.HandleFunc("/reviews/pending", h.listPending).Methods(http.MethodGet)
	admin.HandleFunc("/reviews/{id}/approve", h.approve).Methods(http.MethodPost)
	admin.HandleFunc("/reviews/{id}", h.delete).Methods(http.MethodDelete)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req struct {
		AuthorName string `json:"authorName"`
		Email      string `json:"email"`
		Rating     int    `json:"rating"`
		Body       string `json:"body"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AuthorName == "" {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "authorName", Message: "required"})
		return
	}

	rv := &Review{
		ProductID:  productID,
		AuthorName: req.AuthorName,
		Email:      req.Email,
		Rating:     req.Rating,
		Body:       req.Body,
	}
	err = h.repo.Create(r.Context(), rv)
	if errors.Is(err, ErrInvalidRating) {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "rating", Message: err.Error()})
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to submit review")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, rv)
}

func (h *Handler) listForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	reviews, err := h.repo.ListForProduct(r.Context(), productID, true)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list reviews")
		return
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	limit := int32(20)
	if v, err := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}

	reviews, err := h.repo.ListPending(r.Context(), limit, 0)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list pending reviews")
		return
	}
	if reviews == nil {
		reviews = []*Review{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	err = h.repo.SetApproved(r.Context(), id, true)
	if errors.Is(err, ErrReviewNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to approve review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid review id")
		return
	}

	err = h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrReviewNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete review")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
