package category

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
	public.HandleFunc("/categories", h.list).Methods(http.MethodGet)

	admin.HandleFunc("/categories", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{id}", h.delete).Methods(http.MethodDelete)
}

type categoryRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := h.repo.List(r.Context())
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []*Category{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
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

	c := &Category{Name: req.Name, Slug: req.Slug}
	err := h.repo.Create(r.Context(), c)
	if errors.Is(err, ErrSlugExists) {
		httpx.WriteError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create category")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Slug == "" {
		req.Slug = product.Slugify(req.Name)
	}

	c := &Category{ID: id, Name: req.Name, Slug: req.Slug}
	err = h.repo.Update(r.Context(), c)
	switch {
	case errors.Is(err, ErrCategoryNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSlugExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update category")
	default:
		httpx.WriteJSON(w, http.StatusOK, c)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid category id")
		return
	}

	err = h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrCategoryNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
