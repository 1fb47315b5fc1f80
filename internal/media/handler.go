package media

import (
	"errors"
	"net/http"

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
	public.HandleFunc("/products/{id}/media", h.listForProduct).Methods(http.MethodGet)

	admin.HandleFunc("/media", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/media/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/media/{id}", h.delete).Methods(http.MethodDelete)
}

type assetRequest struct {
	URL       string  `json:"url"`
	AltText   string  `json:"altText"`
	Kind      string  `json:"kind"`
	ProductID *string `json:"productId,omitempty"`
	SortOrder int     `json:"sortOrder"`
}

func (req *assetRequest) toAsset() (*Asset, error) {
	a := &Asset{
		URL:       req.URL,
		AltText:   req.AltText,
		Kind:      req.Kind,
		SortOrder: req.SortOrder,
	}
	if req.ProductID != nil {
		pid, err := uuid.Parse(*req.ProductID)
		if err != nil {
			return nil, err
		}
		a.ProductID = &pid
	}
	return a, nil
}

func (h *Handler) listForProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	assets, err := h.repo.ListForProduct(r.Context(), productID)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list media")
		return
	}
	if assets == nil {
		assets = []*Asset{}
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"media": assets})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "url", Message: "required"})
		return
	}

	a, err := req.toAsset()
	if err != nil {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "productId", Message: "invalid uuid"})
		return
	}

	if err := h.repo.Create(r.Context(), a); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create media")
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	var req assetRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := req.toAsset()
	if err != nil {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "productId", Message: "invalid uuid"})
		return
	}
	a.ID = id

	err = h.repo.Update(r.Context(), a)
	if errors.Is(err, ErrMediaNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update media")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid media id")
		return
	}

	err = h.repo.Delete(r.Context(), id)
	if errors.Is(err, ErrMediaNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete media")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
