package order

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"doorparts-be/internal/httpx"
	"doorparts-be/internal/middleware"

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
	public.HandleFunc("/orders", h.checkout).Methods(http.MethodPost)

	admin.HandleFunc("/orders", h.list).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.get).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}", h.hardDelete).Methods(http.MethodDelete)
	admin.HandleFunc("/orders/{id}/history", h.history).Methods(http.MethodGet)
	admin.HandleFunc("/orders/{id}/status", h.updateStatus).Methods(http.MethodPut)
	admin.HandleFunc("/orders/{id}/ship", h.ship).Methods(http.MethodPost)
}

type checkoutItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type checkoutRequest struct {
	CustomerID    *string               `json:"customerId,omitempty"`
	CustomerEmail string                `json:"customerEmail"`
	CustomerName  string                `json:"customerName"`
	Items         []checkoutItemRequest `json:"items"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.CustomerEmail == "" {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "customerEmail", Message: "required"})
		return
	}
	if len(req.Items) == 0 {
		httpx.WriteValidationError(w, httpx.FieldError{Field: "items", Message: "at least one item required"})
		return
	}

	input := CheckoutInput{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
	}

	if req.CustomerID != nil {
		cid, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			httpx.WriteValidationError(w, httpx.FieldError{Field: "customerId", Message: "invalid uuid"})
			return
		}
		input.CustomerID = &cid
	}

	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			httpx.WriteValidationError(w, httpx.FieldError{Field: "items.productId", Message: "invalid uuid"})
			return
		}
		if item.Quantity <= 0 {
			httpx.WriteValidationError(w, httpx.FieldError{Field: "items.quantity", Message: "must be positive"})
			return
		}
		input.Items = append(input.Items, CheckoutItemInput{ProductID: pid, Quantity: item.Quantity})
	}

	o, err := h.svc.Checkout(r.Context(), input)
	if errors.Is(err, ErrEmptyOrder) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to create order")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, o)
}

func parseFilter(r *http.Request) *FilterInput {
	q := r.URL.Query()
	filter := &FilterInput{}
	touched := false

	if s := q.Get("search"); s != "" {
		filter.Search = &s
		touched = true
	}
	if s := q.Get("status"); s != "" {
		st := Status(s)
		filter.Status = &st
		touched = true
	}
	if s := q.Get("paymentStatus"); s != "" {
		ps := PaymentStatus(s)
		filter.PaymentStatus = &ps
		touched = true
	}
	if s := q.Get("customerId"); s != "" {
		if cid, err := uuid.Parse(s); err == nil {
			filter.CustomerID = &cid
			touched = true
		}
	}
	if s := q.Get("dateFrom"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.DateFrom = &t
			touched = true
		}
	}
	if s := q.Get("dateTo"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			filter.DateTo = &t
			touched = true
		}
	}

	if !touched {
		return nil
	}
	return filter
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := int32(20)
	if v, err := strconv.ParseInt(q.Get("limit"), 10, 32); err == nil && v > 0 {
		limit = int32(v)
	}
	page := int32(1)
	if v, err := strconv.ParseInt(q.Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	offset := (page - 1) * limit

	var sort *SortInput
	if f := q.Get("sort"); f != "" {
		sort = &SortInput{
			Field:     SortField(f),
			Direction: SortDirection(q.Get("dir")),
		}
	}

	orders, total, err := h.svc.List(r.Context(), parseFilter(r), sort, limit, offset)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	if orders == nil {
		orders = []*Order{}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"orders": orders,
		"total":  total,
		"page":   page,
		"limit":  limit,
	})
}

func orderIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.svc.GetByID(r.Context(), id)
	if errors.Is(err, ErrOrderNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) hardDelete(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	err = h.svc.HardDelete(r.Context(), id)
	if errors.Is(err, ErrOrderNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to delete order")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	records, err := h.svc.StatusHistory(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load history")
		return
	}
	if records == nil {
		records = []*StatusRecord{}
	}

	httpx.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		Status Status `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := middleware.StaffEmailFromContext(r.Context())
	err = h.svc.UpdateStatus(r.Context(), id, req.Status, actor)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to update status")
	default:
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
	}
}

func (h *Handler) ship(w http.ResponseWriter, r *http.Request) {
	id, err := orderIDFromRequest(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	var req struct {
		TrackingNumber string  `json:"trackingNumber"`
		LabelURL       *string `json:"labelUrl,omitempty"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := middleware.StaffEmailFromContext(r.Context())
	err = h.svc.Ship(r.Context(), id, req.TrackingNumber, req.LabelURL, actor)
	switch {
	case errors.Is(err, ErrInvalidTracking):
		httpx.WriteValidationError(w, httpx.FieldError{Field: "trackingNumber", Message: ErrInvalidTracking.Error()})
	case errors.Is(err, ErrOrderNotFound):
		httpx.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case err != nil:
		httpx.WriteError(w, http.StatusInternalServerError, "failed to ship order")
	default:
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "shipped"})
	}
}
