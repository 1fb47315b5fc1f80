package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"doorparts-be/internal/logger"
	"doorparts-be/internal/metrics"
	"doorparts-be/internal/order"
	"doorparts-be/internal/payment"

	"go.uber.org/zap"
)

// PayPal event types this system reacts to. Anything else is acknowledged and
// ignored.
const (
	EventCaptureCompleted = "PAYMENT.CAPTURE.COMPLETED"
	EventOrderApproved    = "CHECKOUT.ORDER.APPROVED"
	EventCaptureDenied    = "PAYMENT.CAPTURE.DENIED"
	EventCapturePending   = "PAYMENT.CAPTURE.PENDING"
	EventCaptureRefunded  = "PAYMENT.CAPTURE.REFUNDED"
	EventCaptureReversed  = "PAYMENT.CAPTURE.REVERSED"
	EventOrderVoided      = "CHECKOUT.ORDER.VOIDED"
	EventDisputeCreated   = "CUSTOMER.DISPUTE.CREATED"
	EventDisputeResolved  = "CUSTOMER.DISPUTE.RESOLVED"
)

type eventHandler func(ctx context.Context, evt *payment.Event, correlationID string) error

// Handler ingests provider-signed webhook deliveries and maps them onto order
// state transitions.
type Handler struct {
	orderSvc order.Service
	gateway  payment.Gateway
	repo     payment.Repository

	dispatch map[string]eventHandler
}

func NewWebhookHandler(orderSvc order.Service, gateway payment.Gateway, repo payment.Repository) *Handler {
	h := &Handler{
		orderSvc: orderSvc,
		gateway:  gateway,
		repo:     repo,
	}

	// Closed dispatch table: adding a provider event type means adding a row
	// here, there is no stringly fall-through.
	h.dispatch = map[string]eventHandler{
		EventCaptureCompleted: h.handlePaid,
		EventOrderApproved:    h.handleApproved,
		EventCaptureDenied:    h.handleDenied,
		EventCapturePending:   h.handlePending,
		EventCaptureRefunded:  h.handleRefunded,
		EventCaptureReversed:  h.handleCancelled,
		EventOrderVoided:      h.handleCancelled,
		EventDisputeCreated:   h.handleDisputeCreated,
		EventDisputeResolved:  h.handleDisputeResolved,
	}

	return h
}

// WebhookHandler is the POST endpoint PayPal delivers events to.
//
// Response contract: 401 on signature failure, 400 on an unreadable payload,
// 200 on every recognized-or-ignored event, 500 only when a state mutation
// failed and the provider should redeliver.
func (h *Handler) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if err := h.gateway.VerifyWebhookSignature(ctx, r, body); err != nil {
		log.Warn("webhook signature rejected", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues("unknown", "signature_rejected").Inc()
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var evt payment.Event
	if err := json.Unmarshal(body, &evt); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.EventType),
		zap.String("resource_id", evt.Resource.ID),
	)

	correlationID := evt.CorrelationID()

	webhookID, isDuplicate, err := h.repo.SaveWebhookEvent(
		ctx, "paypal", evt.ID, evt.EventType, correlationID, body, true,
	)
	if err != nil {
		log.Error("failed to record webhook event", zap.Error(err))
		http.Error(w, "failed to record event", http.StatusInternalServerError)
		return
	}
	if isDuplicate {
		log.Info("duplicate webhook delivery, ignoring")
		metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "duplicate").Inc()
		writeOK(w)
		return
	}

	handle, known := h.dispatch[evt.EventType]
	if !known {
		log.Info("unhandled webhook event type, ignoring")
		metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "ignored").Inc()
		h.markProcessed(ctx, webhookID)
		writeOK(w)
		return
	}

	// Capture events sometimes omit custom_id; fall back to resolving the
	// provider order id recorded at checkout.
	if correlationID == "" {
		if ppOrderID := evt.ProviderOrderID(); ppOrderID != "" {
			oid, rErr := h.orderSvc.ResolveByPayPalOrder(ctx, ppOrderID)
			switch {
			case rErr == nil:
				correlationID = oid.String()
			case errors.Is(rErr, order.ErrOrderNotFound):
				// leave empty, dropped below
			default:
				log.Error("failed to resolve provider order id", zap.Error(rErr))
				if mErr := h.repo.MarkWebhookFailed(ctx, webhookID, rErr.Error()); mErr != nil {
					log.Error("failed to mark webhook failed", zap.Error(mErr))
				}
				http.Error(w, "failed to resolve order", http.StatusInternalServerError)
				return
			}
		}
	}

	if correlationID == "" {
		// The provider's own retry policy is the only recovery mechanism;
		// an uncorrelatable event is logged and dropped.
		log.Warn("webhook event carries no correlation id, dropping")
		metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "uncorrelated").Inc()
		h.markProcessed(ctx, webhookID)
		writeOK(w)
		return
	}

	err = handle(ctx, &evt, correlationID)
	if errors.Is(err, order.ErrOrderNotFound) {
		log.Warn("webhook correlation id does not resolve to an order, dropping",
			zap.String("correlation_id", correlationID),
		)
		metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "unresolved").Inc()
		h.markProcessed(ctx, webhookID)
		writeOK(w)
		return
	}
	if err != nil {
		log.Error("failed to apply webhook event", zap.Error(err))
		metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "error").Inc()
		if mErr := h.repo.MarkWebhookFailed(ctx, webhookID, err.Error()); mErr != nil {
			log.Error("failed to mark webhook failed", zap.Error(mErr))
		}
		http.Error(w, "failed to update order", http.StatusInternalServerError)
		return
	}

	metrics.WebhookEventsTotal.WithLabelValues(evt.EventType, "processed").Inc()
	h.markProcessed(ctx, webhookID)
	writeOK(w)
}

func writeOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) markProcessed(ctx context.Context, webhookID int64) {
	if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		logger.FromCtx(ctx).Error("failed to mark webhook processed", zap.Error(err))
	}
}

func (h *Handler) handlePaid(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.MarkPaid(ctx, correlationID, evt.Resource.ID)
}

// handleApproved acknowledges buyer approval without touching payment state.
// No funds have moved at approval time and the resource id is the provider
// order id, not a capture id; paid is driven by PAYMENT.CAPTURE.COMPLETED or
// the explicit capture endpoint.
func (h *Handler) handleApproved(ctx context.Context, evt *payment.Event, correlationID string) error {
	logger.FromCtx(ctx).Info("order approved by buyer, awaiting capture",
		zap.String("correlation_id", correlationID),
	)
	return nil
}

func (h *Handler) handleDenied(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.MarkPaymentFailed(ctx, correlationID, evt.FailureReason())
}

func (h *Handler) handlePending(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.MarkPaymentPending(ctx, correlationID)
}

func (h *Handler) handleRefunded(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.MarkRefunded(ctx, correlationID)
}

func (h *Handler) handleCancelled(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.MarkCancelled(ctx, correlationID)
}

func (h *Handler) handleDisputeCreated(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.OpenDispute(ctx, correlationID, evt.Resource.DisputeID)
}

func (h *Handler) handleDisputeResolved(ctx context.Context, evt *payment.Event, correlationID string) error {
	return h.orderSvc.ResolveDispute(ctx, correlationID)
}
