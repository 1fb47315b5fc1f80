package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrCustomerNotFound = errors.New("customer not found")

type Repository interface {
	Upsert(ctx context.Context, email, name string) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByEmail(ctx context.Context, email string) (*Customer, error)
	List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Customer, error)
	Count(ctx context.Context, filter *FilterInput) (int64, error)

	CreateNote(ctx context.Context, n *Note) error
	ListNotes(ctx context.Context, customerID uuid.UUID) ([]*Note, error)

	LogEmail(ctx context.Context, e *EmailLogEntry) error
	EmailHistory(ctx context.Context, recipient string, limit int32) ([]*EmailLogEntry, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const customerColumns = `id, email, name, phone, order_count, total_spent, created_at, updated_at`

func scanCustomer(row interface{ Scan(...any) error }) (*Customer, error) {
	c := &Customer{}
	err := row.Scan(&c.ID, &c.Email, &c.Name, &c.Phone, &c.OrderCount, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Upsert keys customers by email. An existing record keeps its name unless
// the incoming one is non-empty.
func (r *repository) Upsert(ctx context.Context, email, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO customers (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET name = CASE WHEN EXCLUDED.name <> '' THEN EXCLUDED.name ELSE customers.name END,
		    updated_at = NOW()
		RETURNING id`,
		uuid.New(), email, name,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	return scanCustomer(row)
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE email = $1`, email)
	return scanCustomer(row)
}

func buildFilter(filter *FilterInput, args *[]any) string {
	where := ""
	if filter != nil && filter.Search != nil {
		*args = append(*args, "%"+*filter.Search+"%")
		where = fmt.Sprintf(" WHERE (email ILIKE $%d OR name ILIKE $%d)", len(*args), len(*args))
	}
	return where
}

func (r *repository) List(ctx context.Context, filter *FilterInput, limit, offset int32) ([]*Customer, error) {
	var args []any
	query := `SELECT ` + customerColumns + ` FROM customers` + buildFilter(filter, &args)
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Count(ctx context.Context, filter *FilterInput) (int64, error) {
	var args []any
	query := `SELECT COUNT(*) FROM customers` + buildFilter(filter, &args)

	var total int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repository) CreateNote(ctx context.Context, n *Note) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO customer_notes (id, customer_id, staff_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		n.ID, n.CustomerID, n.StaffID, n.Body,
	).Scan(&n.CreatedAt)
}

func (r *repository) ListNotes(ctx context.Context, customerID uuid.UUID) ([]*Note, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, customer_id, staff_id, body, created_at
		FROM customer_notes
		WHERE customer_id = $1
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Note
	for rows.Next() {
		n := &Note{}
		if err := rows.Scan(&n.ID, &n.CustomerID, &n.StaffID, &n.Body, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repository) LogEmail(ctx context.Context, e *EmailLogEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return r.db.QueryRowContext(ctx, `
		INSERT INTO email_log (id, recipient, subject, template, delivered)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		e.ID, e.Recipient, e.Subject, e.Template, e.Delivered,
	).Scan(&e.CreatedAt)
}

func (r *repository) EmailHistory(ctx context.Context, recipient string, limit int32) ([]*EmailLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, subject, template, delivered, created_at
		FROM email_log
		WHERE recipient = $1
		ORDER BY created_at DESC
		LIMIT $2`, recipient, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*EmailLogEntry
	for rows.Next() {
		e := &EmailLogEntry{}
		if err := rows.Scan(&e.ID, &e.Recipient, &e.Subject, &e.Template, &e.Delivered, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
