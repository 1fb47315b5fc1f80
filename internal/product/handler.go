package product

import (
	"errors"
	"net/http"
	"strconv"

	"doorparts-be/internal/httpx"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(public, admin *mux.Router) {
	public.HandleFunc("/products", h.list(true)).Methods(http.MethodGet)
	public.HandleFunc("/products/{slug}", h.getBySlug).Methods(http.MethodGet)

	admin.HandleFunc("/products", h.list(false)).Methods(http.MethodGet)
	admin.HandleFunc("/products", h.create).Methods(http.MethodPost)
	admin.HandleFunc("/products/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/products/{id}", h.update).Methods(http.MethodPut)
	admin.HandleFunc("/products/{id}", h.delete).Methods(http.MethodDelete)
}

type productRequest struct {
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  *string `json:"categoryId,omitempty"`
	BrandID     *string `json:"brandId,omitempty"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Active      bool    `json:"active"`
}

func (req *productRequest) toProduct() (*Product, error) {
	p := &Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURL:    req.ImageURL,
		Active:      req.Active,
	}
	if req.CategoryID != nil {
		id, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, err
		}
		p.CategoryID = &id
	}
	if req.BrandID != nil {
		id, err := uuid.Parse(*req.BrandID)
		if err != nil {
			return nil, err
		}
		p.BrandID = &id
	}
	return p, nil
}

func (h *Handler) list(publicView bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		filter := &FilterInput{ActiveOnly: publicView}
		if s := q.Get("search"); s != "" {
			filter.Search = &s
		}
		if s := q.Get("categoryId"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				filter.CategoryID = &id
			}
		}
		if s := q.Get("brandId"); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				filter.BrandID = &id
			}
		}

		limit := int32(20)
		if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
			limit = int32(v)
		}
		page := int32(1)
		if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil && v > 0 {
			page = int32(v)
		}

		products, total, err := h.svc.List(r.Context(), filter, limit, (page-1)*limit)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, "failed to list products")
			return
		}
		if products == nil {
			products = []*Product{}
		}

		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"products": products,
			"total":    total,
			"page":     page,
			"limit":    limit,
		})
	}
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetBySlug(r.Context(), mux.Vars(r)["slug"])
	if errors.Is(err, ErrProductNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	p, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, ErrProductNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.SKU == "" {
		httpx.WriteValidationError(w,
			httpx.FieldError{Field: "name", Message: "required"},
			httpx.FieldError{Field: "sku", Message: "required"},
		)
		return
	}

	p, err := req.toProduct()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid category or brand id")
		return
	}

	err = h.svc.Create(r.Context(), p)
	switch {
	case errors.Is(err, ErrSKUExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidPrice):
		httpx.WriteValidationError(w, httpx.FieldError{Field: "price", Message: err.Error()})
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create product")
	default:
		httpx.WriteJSON(w, http.StatusCreated, p)
	}
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := req.toProduct()
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid category or brand id")
		return
	}
	p.ID = id

	err = h.svc.Update(r.Context(), p)
	switch {
	case errors.Is(err, ErrProductNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSKUExists):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalidPrice):
		httpx.WriteValidationError(w, httpx.FieldError{Field: "price", Message: err.Error()})
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update product")
	default:
		httpx.WriteJSON(w, http.StatusOK, p)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	err = h.svc.Delete(r.Context(), id)
	if errors.Is(err, ErrProductNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
