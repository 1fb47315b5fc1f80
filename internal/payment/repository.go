package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	SavePayment(ctx context.Context, p *Payment) error
	UpdatePaymentStatus(ctx context.Context, providerRef, status string) error
	GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error)
	GetPaymentByProviderRef(ctx context.Context, providerRef string) (*Payment, error)

	// SaveWebhookEvent inserts the delivery for audit and dedupe. isDuplicate
	// reports that this event id was already processed (or is in flight), in
	// which case the caller must treat the delivery as a no-op. A previously
	// failed delivery of the same event id is handed back for reprocessing.
	SaveWebhookEvent(
		ctx context.Context,
		provider string,
		eventID string,
		eventType string,
		correlationID string,
		payload json.RawMessage,
		signatureValid bool,
	) (webhookID int64, isDuplicate bool, err error)

	MarkWebhookProcessed(ctx context.Context, webhookID int64) error
	MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SavePayment(ctx context.Context, p *Payment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO payments (order_id, provider, provider_ref, transaction_id, amount, currency, status, approve_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.OrderID, p.Provider, p.ProviderRef, p.TransactionID, p.Amount, p.Currency, p.Status, p.ApproveURL)
	return err
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, providerRef, status string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $1, updated_at = NOW() WHERE provider_ref = $2
	`, status, providerRef)
	return err
}

func (r *repository) GetPaymentByOrder(ctx context.Context, orderID string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, provider_ref, transaction_id, amount, currency, status, approve_url, created_at, updated_at
		FROM payments WHERE order_id = $1
		ORDER BY created_at DESC LIMIT 1
	`, orderID)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.ProviderRef, &p.TransactionID,
		&p.Amount, &p.Currency, &p.Status, &p.ApproveURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetPaymentByProviderRef(ctx context.Context, providerRef string) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, provider, provider_ref, transaction_id, amount, currency, status, approve_url, created_at, updated_at
		FROM payments WHERE provider_ref = $1
	`, providerRef)

	var p Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.Provider, &p.ProviderRef, &p.TransactionID,
		&p.Amount, &p.Currency, &p.Status, &p.ApproveURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) SaveWebhookEvent(
	ctx context.Context,
	provider string,
	eventID string,
	eventType string,
	correlationID string,
	payload json.RawMessage,
	signatureValid bool,
) (int64, bool, error) {

	var webhookID int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO webhook_events (provider, event_id, event_type, correlation_id, payload, signature_valid, status)
		VALUES ($1, $2, $3, $4, $5, $6, 'received')
		ON CONFLICT (event_id) DO NOTHING
		RETURNING id
	`, provider, eventID, eventType, correlationID, payload, signatureValid).
		Scan(&webhookID)

	if err == nil {
		return webhookID, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, err
	}

	// Conflict path: the event id exists. A failed earlier attempt may be
	// retried on redelivery; anything else is a duplicate.
	var existingID int64
	var status string
	err = r.db.QueryRowContext(ctx, `
		SELECT id, status FROM webhook_events WHERE event_id = $1
	`, eventID).Scan(&existingID, &status)
	if err != nil {
		return 0, false, err
	}

	if status == "failed" {
		_, err = r.db.ExecContext(ctx, `
			UPDATE webhook_events SET status = 'received', failure_reason = NULL WHERE id = $1
		`, existingID)
		if err != nil {
			return 0, false, err
		}
		return existingID, false, nil
	}

	return 0, true, nil
}

func (r *repository) MarkWebhookProcessed(ctx context.Context, webhookID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events SET status = 'processed', processed_at = NOW() WHERE id = $1
	`, webhookID)
	return err
}

func (r *repository) MarkWebhookFailed(ctx context.Context, webhookID int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE webhook_events SET status = 'failed', failure_reason = $2, processed_at = NOW() WHERE id = $1
	`, webhookID, reason)
	return err
}
