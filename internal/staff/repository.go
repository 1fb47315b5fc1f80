package staff

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id uint) (*Staff, error)
	GetByEmail(ctx context.Context, email string) (*Staff, error)
	List(ctx context.Context) ([]*Staff, error)
	ActiveIDs(ctx context.Context) ([]uint, error)
	Update(ctx context.Context, s *Staff) error
	Delete(ctx context.Context, id uint) error

	CreatePasswordReset(ctx context.Context, reset *PasswordReset) error
	GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error)
	MarkResetUsed(ctx context.Context, id uint) error
	UpdatePassword(ctx context.Context, staffID uint, passwordHash string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, s *Staff) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO staff (name, email, password_hash, role, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, s.Name, s.Email, s.PasswordHash, s.Role, s.Active).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
		return ErrEmailExists
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Staff, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, active, created_at, updated_at
		FROM staff WHERE id = $1
	`, id))
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*Staff, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, role, active, created_at, updated_at
		FROM staff WHERE email = $1
	`, email))
}

func (r *repository) scanOne(row *sql.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *repository) List(ctx context.Context) ([]*Staff, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, password_hash, role, active, created_at, updated_at
		FROM staff ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.Role, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *repository) ActiveIDs(ctx context.Context) ([]uint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM staff WHERE active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []uint
	for rows.Next() {
		var id uint
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *repository) Update(ctx context.Context, s *Staff) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE staff
		SET name = $1, email = $2, role = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`, s.Name, s.Email, s.Role, s.Active, s.ID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrStaffNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrStaffNotFound
	}
	return nil
}

func (r *repository) CreatePasswordReset(ctx context.Context, reset *PasswordReset) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO staff_password_resets (staff_id, token, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, reset.StaffID, reset.Token, reset.ExpiresAt).
		Scan(&reset.ID, &reset.CreatedAt)
}

func (r *repository) GetPasswordReset(ctx context.Context, token string) (*PasswordReset, error) {
	var pr PasswordReset
	err := r.db.QueryRowContext(ctx, `
		SELECT id, staff_id, token, expires_at, used_at, created_at
		FROM staff_password_resets WHERE token = $1
	`, token).Scan(&pr.ID, &pr.StaffID, &pr.Token, &pr.ExpiresAt, &pr.UsedAt, &pr.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResetTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *repository) MarkResetUsed(ctx context.Context, id uint) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE staff_password_resets SET used_at = NOW() WHERE id = $1
	`, id)
	return err
}

func (r *repository) UpdatePassword(ctx context.Context, staffID uint, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE staff SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`, passwordHash, staffID)
	return err
}
