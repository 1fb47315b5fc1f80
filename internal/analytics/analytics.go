package analytics

import (
	"context"
	"database/sql"
	"time"
)

// RevenuePoint is one day of captured revenue. Amounts are cents and count
// only orders whose payment settled.
type RevenuePoint struct {
	Day     time.Time `json:"day"`
	Revenue int64     `json:"revenue"`
	Orders  int64     `json:"orders"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type TopProduct struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Units     int64  `json:"units"`
	Revenue   int64  `json:"revenue"`
}

type Summary struct {
	TotalRevenue  int64 `json:"totalRevenue"`
	TotalOrders   int64 `json:"totalOrders"`
	CustomerCount int64 `json:"customerCount"`
	OpenDisputes  int64 `json:"openDisputes"`
}

type Repository interface {
	RevenueOverRange(ctx context.Context, from, to time.Time) ([]*RevenuePoint, error)
	OrdersByStatus(ctx context.Context) ([]*StatusCount, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]*TopProduct, error)
	Summarize(ctx context.Context, from, to time.Time) (*Summary, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) RevenueOverRange(ctx context.Context, from, to time.Time) ([]*RevenuePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date_trunc('day', paid_at) AS day, COALESCE(SUM(total), 0), COUNT(*)
		FROM orders
		WHERE payment_status = 'paid' AND paid_at >= $1 AND paid_at < $2
		GROUP BY day
		ORDER BY day ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*RevenuePoint
	for rows.Next() {
		p := &RevenuePoint{}
		if err := rows.Scan(&p.Day, &p.Revenue, &p.Orders); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) OrdersByStatus(ctx context.Context) ([]*StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*)
		FROM orders
		GROUP BY status
		ORDER BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*StatusCount
	for rows.Next() {
		c := &StatusCount{}
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, from, to time.Time, limit int32) ([]*TopProduct, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT oi.product_id, oi.product_name, oi.sku,
		       SUM(oi.quantity), SUM(oi.subtotal)
		FROM order_items oi
		JOIN orders o ON o.id = oi.order_id
		WHERE o.payment_status = 'paid' AND o.paid_at >= $1 AND o.paid_at < $2
		GROUP BY oi.product_id, oi.product_name, oi.sku
		ORDER BY SUM(oi.subtotal) DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*TopProduct
	for rows.Next() {
		p := &TopProduct{}
		if err := rows.Scan(&p.ProductID, &p.Name, &p.SKU, &p.Units, &p.Revenue); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Summarize(ctx context.Context, from, to time.Time) (*Summary, error) {
	s := &Summary{}
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COALESCE((SELECT SUM(total) FROM orders WHERE payment_status = 'paid' AND paid_at >= $1 AND paid_at < $2), 0),
			(SELECT COUNT(*) FROM orders WHERE created_at >= $1 AND created_at < $2),
			(SELECT COUNT(*) FROM customers),
			(SELECT COUNT(*) FROM orders WHERE dispute_state = 'open')`,
		from, to,
	).Scan(&s.TotalRevenue, &s.TotalOrders, &s.CustomerCount, &s.OpenDisputes)
	if err != nil {
		return nil, err
	}
	return s, nil
}
