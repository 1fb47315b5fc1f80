package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"doorparts-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, offset int32) ([]*Order, error)
	Count(ctx context.Context, filter *FilterInput) (int64, error)
	HardDelete(ctx context.Context, id uuid.UUID) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Ship(ctx context.Context, id uuid.UUID, trackingNumber string, labelURL *string) error
	SetPayPalOrderID(ctx context.Context, id uuid.UUID, paypalOrderID string) error
	GetIDByPayPalOrderID(ctx context.Context, paypalOrderID string) (uuid.UUID, error)

	MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error
	MarkPaymentPending(ctx context.Context, id uuid.UUID) error
	MarkPaymentFailed(ctx context.Context, id uuid.UUID, reason string) error
	MarkRefunded(ctx context.Context, id uuid.UUID) error
	MarkCancelled(ctx context.Context, id uuid.UUID) error
	SetDispute(ctx context.Context, id uuid.UUID, state DisputeState, disputeID *string) error

	AppendStatusRecord(ctx context.Context, rec *StatusRecord) error
	StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusRecord, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `
	o.id, o.order_number, o.customer_id, o.customer_email, o.customer_name,
	o.status, o.payment_status, o.shipping_status,
	o.subtotal, o.shipping_cost, o.tax_amount, o.total,
	o.paypal_order_id, o.paypal_transaction_id,
	o.paid_at, o.refunded_at, o.cancelled_at, o.payment_failure_reason,
	o.tracking_number, o.label_url, o.box_size, o.box_cost,
	o.dispute_state, o.dispute_id,
	o.created_at, o.updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerEmail, &o.CustomerName,
		&o.Status, &o.PaymentStatus, &o.ShippingStatus,
		&o.Subtotal, &o.ShippingCost, &o.TaxAmount, &o.Total,
		&o.PayPalOrderID, &o.PayPalTransactionID,
		&o.PaidAt, &o.RefundedAt, &o.CancelledAt, &o.PaymentFailureReason,
		&o.TrackingNumber, &o.LabelURL, &o.BoxSize, &o.BoxCost,
		&o.DisputeState, &o.DisputeID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("order_number", o.OrderNumber),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", zap.Error(err))
		return err
	}

	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Error("failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			id, order_number, customer_id, customer_email, customer_name,
			status, payment_status, shipping_status,
			subtotal, shipping_cost, tax_amount, total
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at, updated_at
	`,
		o.ID, o.OrderNumber, o.CustomerID, o.CustomerEmail, o.CustomerName,
		o.Status, o.PaymentStatus, o.ShippingStatus,
		o.Subtotal, o.ShippingCost, o.TaxAmount, o.Total,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (
				order_id, product_id, product_name, sku, quantity, unit_price, subtotal
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`,
			item.OrderID, item.ProductID, item.ProductName, item.SKU,
			item.Quantity, item.UnitPrice, item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			log.Error("failed to insert order item",
				zap.Int("item_index", i),
				zap.Error(err),
			)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("failed to commit order transaction", zap.Error(err))
		return err
	}

	committed = true
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders o WHERE o.id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, sku, quantity, unit_price, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.SKU, &item.Quantity, &item.UnitPrice, &item.Subtotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, item)
	}

	return o, rows.Err()
}

func buildFilter(filter *FilterInput, args []any, argIndex int) (string, []any, int) {
	var sb strings.Builder

	if filter == nil {
		return "", args, argIndex
	}

	if filter.Search != nil && *filter.Search != "" {
		sb.WriteString(fmt.Sprintf(
			" AND (o.order_number ILIKE $%d OR o.customer_email ILIKE $%d)",
			argIndex, argIndex,
		))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.Status != nil && *filter.Status != "" {
		sb.WriteString(fmt.Sprintf(" AND o.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.PaymentStatus != nil && *filter.PaymentStatus != "" {
		sb.WriteString(fmt.Sprintf(" AND o.payment_status = $%d", argIndex))
		args = append(args, *filter.PaymentStatus)
		argIndex++
	}

	if filter.CustomerID != nil {
		sb.WriteString(fmt.Sprintf(" AND o.customer_id = $%d", argIndex))
		args = append(args, *filter.CustomerID)
		argIndex++
	}

	if filter.DateFrom != nil {
		sb.WriteString(fmt.Sprintf(" AND o.created_at >= $%d", argIndex))
		args = append(args, *filter.DateFrom)
		argIndex++
	}

	if filter.DateTo != nil {
		sb.WriteString(fmt.Sprintf(" AND o.created_at <= $%d", argIndex))
		args = append(args, *filter.DateTo)
		argIndex++
	}

	return sb.String(), args, argIndex
}

func (r *repository) List(ctx context.Context, filter *FilterInput, sort *SortInput, limit, offset int32) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("method", "List"),
		zap.Int32("limit", limit),
		zap.Int32("offset", offset),
	)

	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE 1=1`

	args := []any{}
	argIndex := 1

	var where string
	where, args, argIndex = buildFilter(filter, args, argIndex)
	query += where

	orderBy := "o.created_at DESC"
	if sort != nil {
		dir := strings.ToUpper(string(sort.Direction))
		if dir != "ASC" && dir != "DESC" {
			dir = "DESC"
		}
		switch sort.Field {
		case SortFieldTotal:
			orderBy = "o.total " + dir
		case SortFieldCreatedAt:
			orderBy = "o.created_at " + dir
		}
	}
	query += " ORDER BY " + orderBy

	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("failed to scan order row", zap.Error(err))
			return nil, err
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		log.Error("rows iteration error", zap.Error(err))
		return nil, err
	}

	return orders, nil
}

func (r *repository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	query := `SELECT COUNT(*) FROM orders o WHERE 1=1`

	args := []any{}
	var where string
	where, args, _ = buildFilter(filter, args, 1)
	query += where

	var count int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *repository) HardDelete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.exec(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2
	`, status, id)
}

func (r *repository) Ship(ctx context.Context, id uuid.UUID, trackingNumber string, labelURL *string) error {
	return r.exec(ctx, `
		UPDATE orders
		SET status = $1, shipping_status = $2, tracking_number = $3, label_url = $4, updated_at = NOW()
		WHERE id = $5
	`, StatusShipped, ShippingShipped, trackingNumber, labelURL, id)
}

func (r *repository) SetPayPalOrderID(ctx context.Context, id uuid.UUID, paypalOrderID string) error {
	return r.exec(ctx, `
		UPDATE orders SET paypal_order_id = $1, updated_at = NOW() WHERE id = $2
	`, paypalOrderID, id)
}

func (r *repository) GetIDByPayPalOrderID(ctx context.Context, paypalOrderID string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM orders WHERE paypal_order_id = $1
	`, paypalOrderID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, ErrOrderNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// MarkPaid sets payment state and timestamp in one statement so the
// paid-implies-paidAt invariant holds at the row level.
func (r *repository) MarkPaid(ctx context.Context, id uuid.UUID, transactionID string) error {
	return r.exec(ctx, `
		UPDATE orders
		SET payment_status = $1,
		    paypal_transaction_id = $2,
		    paid_at = NOW(),
		    status = CASE WHEN status = 'pending' THEN 'processing' ELSE status END,
		    updated_at = NOW()
		WHERE id = $3
	`, PaymentPaid, transactionID, id)
}

func (r *repository) MarkPaymentPending(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE orders SET payment_status = $1, updated_at = NOW() WHERE id = $2
	`, PaymentPending, id)
}

func (r *repository) MarkPaymentFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.exec(ctx, `
		UPDATE orders
		SET payment_status = $1, payment_failure_reason = $2, updated_at = NOW()
		WHERE id = $3
	`, PaymentFailed, reason, id)
}

func (r *repository) MarkRefunded(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE orders
		SET payment_status = $1, refunded_at = NOW(), updated_at = NOW()
		WHERE id = $2
	`, PaymentRefunded, id)
}

func (r *repository) MarkCancelled(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `
		UPDATE orders
		SET payment_status = $1, status = $2, cancelled_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`, PaymentCancelled, StatusCancelled, id)
}

func (r *repository) SetDispute(ctx context.Context, id uuid.UUID, state DisputeState, disputeID *string) error {
	return r.exec(ctx, `
		UPDATE orders SET dispute_state = $1, dispute_id = COALESCE($2, dispute_id), updated_at = NOW()
		WHERE id = $3
	`, state, disputeID, id)
}

func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (r *repository) AppendStatusRecord(ctx context.Context, rec *StatusRecord) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO order_status_history (order_id, field, from_value, to_value, actor)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, rec.OrderID, rec.Field, rec.FromValue, rec.ToValue, rec.Actor).
		Scan(&rec.ID, &rec.CreatedAt)
}

func (r *repository) StatusHistory(ctx context.Context, id uuid.UUID) ([]*StatusRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, field, from_value, to_value, actor, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY created_at
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StatusRecord
	for rows.Next() {
		var rec StatusRecord
		if err := rows.Scan(&rec.ID, &rec.OrderID, &rec.Field, &rec.FromValue,
			&rec.ToValue, &rec.Actor, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
