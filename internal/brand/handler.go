package brand

import (
	"errors"
	"net/http"

	"doorparts-be/internal/httpx"
	"doorparts-be/internal/product"

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
	public.HandleFunc("/brands", h.list).Methods(http.MethodGet)

	admin.HandleFunc("/brands", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/brands/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/brands/{id}", h.delete).Methods(http.MethodDelete)
}

type brandRequest struct {
	Name    string  `json:"name"`
	Slug    string  `json:"slug"`
	LogoURL *string `json:"logoUrl,omitempty"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	brands, err := h.repo.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list brands")
		return
	}
	if brands == nil {
		brands = []*Brand{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"brands": brands})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req brandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "name", Message: "required"})
		return
	}
	if req.Slug == "" {
		req.Slug = product.Slugify(req.Name)
	}

	b := &Brand{Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL}
	err := h.repo.Create(r.Context(), b)
	if errors.Is(err, ErrSlugExists) {
		httpx.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create brand")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	var req brandRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slug == "" {
		req.Slug = product.Slugify(req.Name)
	}

	b := &Brand{ID: id, Name: req.Name, Slug: req.Slug, LogoURL: req.LogoURL}
	err = h.repo.Update(r.Context(), b)
	switch {
	case errors.Is(err, ErrBrandNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlugExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update brand")
	default:
		httpx.WriteJSON(w, http.StatusOK, b)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid brand id")
		return
	}

	err = h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrBrandNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete brand")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
