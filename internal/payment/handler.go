package payment

import (
	"errors"
	"net/http"

	"doorparts-be/internal/httpx"
	"doorparts-be/internal/logger"
	"doorparts-be/internal/order"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Handler exposes the storefront checkout endpoints that talk to PayPal.
type Handler struct {
	orderSvc order.Service
	gateway  Gateway
	repo     Repository
}

func NewHandler(orderSvc order.Service, gateway Gateway, repo Repository) *Handler {
	return &Handler{orderSvc: orderSvc, gateway: gateway, repo: repo}
}

func (h *Handler) RegisterRoutes(public *mux.Router) {
	public.HandleFunc("/checkout/paypal/create", h.createPayPalOrder).Methods(http.MethodPost)
	public.HandleFunc("/checkout/paypal/capture", h.capturePayPalOrder).Methods(http.MethodPost)
}

// createPayPalOrder registers a pending local order with PayPal and hands the
// approve URL back to the storefront.
func (h *Handler) createPayPalOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"orderId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := uuid.Parse(req.OrderID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid order id")
		return
	}

	o, err := h.orderSvc.GetByID(r.Context(), id)
	if errors.Is(err, order.ErrOrderNotFound) {
		httpx.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load order")
		return
	}

	if o.PaymentStatus == order.PaymentPaid {
		httpx.WriteError(w, http.StatusConflict, "order is already paid")
		return
	}

	po, err := h.gateway.CreateOrder(r.Context(), o.ID.String(), o.Total, "USD")
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, "payment provider unavailable")
		return
	}

	if err := h.orderSvc.AttachPayPalOrder(r.Context(), o.ID, po.ProviderOrderID); err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to attach provider order")
		return
	}

	p := &Payment{
		OrderID:     o.ID.String(),
		Provider:    "paypal",
		ProviderRef: po.ProviderOrderID,
		Amount:      o.Total,
		Currency:    "USD",
		Status:      po.Status,
		ApproveURL:  po.ApproveURL,
	}
	if err := h.repo.SavePayment(r.Context(), p); err != nil {
		logger.FromCtx(r.Context()).Error("failed to save payment record", zap.Error(err))
	}

	httpx.WriteJSON(w, http.StatusCreated, map[string]string{
		"paypalOrderId": po.ProviderOrderID,
		"approveUrl":    po.ApproveURL,
	})
}

// capturePayPalOrder captures funds after the buyer approved the payment and
// returned to the storefront. The webhook remains authoritative: a capture
// event for the same transaction is a no-op afterwards.
func (h *Handler) capturePayPalOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PayPalOrderID string `json:"paypalOrderId"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil || req.PayPalOrderID == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.repo.GetPaymentByProviderRef(r.Context(), req.PayPalOrderID)
	if errors.Is(err, ErrPaymentNotFound) {
		httpx.WriteError(w, http.StatusNotFound, "unknown paypal order")
		return
	}
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "failed to load payment")
		return
	}

	capture, err := h.gateway.CaptureOrder(r.Context(), req.PayPalOrderID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadGateway, "capture failed")
		return
	}

	if err := h.repo.UpdatePaymentStatus(r.Context(), req.PayPalOrderID, capture.Status); err != nil {
		logger.FromCtx(r.Context()).Error("failed to update payment status", zap.Error(err))
	}

	if capture.Status == "COMPLETED" {
		if err := h.orderSvc.MarkPaid(r.Context(), p.OrderID, capture.CaptureID); err != nil {
			logger.FromCtx(r.Context()).Error("failed to mark order paid after capture", zap.Error(err))
			httpx.WriteError(w, http.StatusInternalServerError, "failed to update order")
			return
		}
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":    capture.Status,
		"captureId": capture.CaptureID,
	})
}
