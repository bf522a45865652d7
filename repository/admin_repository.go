package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ForeverInLaw/airdealer/models"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

const adminColumns = `id, identity_id, email, first_name, last_name, role, is_approved, created_at, updated_at`

func scanAdmin(row interface{ Scan(dest ...any) error }) (*models.AdminRecord, error) {
	var a models.AdminRecord
	var approved int
	err := row.Scan(&a.ID, &a.IdentityID, &a.Email, &a.FirstName, &a.LastName, &a.Role, &approved, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	a.IsApproved = approved != 0
	return &a, nil
}

// Create inserts a new admin record. Role defaults to 'admin' if empty.
// The identity_id unique constraint enforces at most one record per identity.
func (r *AdminRepository) Create(ctx context.Context, rec *models.AdminRecord) (*models.AdminRecord, error) {
	if rec == nil {
		return nil, errors.New("admin record is nil")
	}
	if rec.Role == "" {
		rec.Role = "admin"
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	approved := 0
	if rec.IsApproved {
		approved = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (identity_id, email, first_name, last_name, role, is_approved) VALUES (?,?,?,?,?,?)`,
		rec.IdentityID, rec.Email, rec.FirstName, rec.LastName, rec.Role, approved)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*models.AdminRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AdminRepository) GetByIdentityID(ctx context.Context, identityID string) (*models.AdminRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	a, err := scanAdmin(r.db.QueryRowContext(ctx, `SELECT `+adminColumns+` FROM admins WHERE identity_id = ?`, identityID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

// List returns admin records ordered by registration date, newest first.
func (r *AdminRepository) List(ctx context.Context, limit, offset int) ([]models.AdminRecord, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.AdminRecord
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// SetApproval flips is_approved and touches updated_at.
func (r *AdminRepository) SetApproval(ctx context.Context, id int64, approved bool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	v := 0
	if approved {
		v = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE admins SET is_approved = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, v, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *AdminRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM admins WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
