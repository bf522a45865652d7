package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ForeverInLaw/airdealer/models"
)

// CatalogRepository covers the three small reference tables: locations,
// manufacturers, and categories. They share the same CRUD shape.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateLocation(ctx context.Context, name string, address *string) (*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO locations (name, address) VALUES (?,?)`, name, address)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetLocation(ctx, id)
}

func (r *CatalogRepository) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var l models.Location
	var address sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, address, created_at, updated_at FROM locations WHERE id = ?`, id).
		Scan(&l.ID, &l.Name, &address, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if address.Valid {
		l.Address = &address.String
	}
	return &l, nil
}

func (r *CatalogRepository) ListLocations(ctx context.Context) ([]models.Location, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, address, created_at, updated_at FROM locations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Location
	for rows.Next() {
		var l models.Location
		var address sql.NullString
		if err := rows.Scan(&l.ID, &l.Name, &address, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		if address.Valid {
			l.Address = &address.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) UpdateLocation(ctx context.Context, id int64, name string, address *string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE locations SET name = ?, address = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, address, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CatalogRepository) DeleteLocation(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "locations", id)
}

func (r *CatalogRepository) CreateManufacturer(ctx context.Context, name string) (*models.Manufacturer, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO manufacturers (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var m models.Manufacturer
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM manufacturers WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *CatalogRepository) ListManufacturers(ctx context.Context) ([]models.Manufacturer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM manufacturers ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Manufacturer
	for rows.Next() {
		var m models.Manufacturer
		if err := rows.Scan(&m.ID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) UpdateManufacturer(ctx context.Context, id int64, name string) error {
	return r.updateName(ctx, "manufacturers", id, name)
}

func (r *CatalogRepository) DeleteManufacturer(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "manufacturers", id)
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `INSERT INTO categories (name) VALUES (?)`, name)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	var c models.Category
	err = r.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]models.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name, created_at, updated_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CatalogRepository) UpdateCategory(ctx context.Context, id int64, name string) error {
	return r.updateName(ctx, "categories", id, name)
}

func (r *CatalogRepository) DeleteCategory(ctx context.Context, id int64) error {
	return r.deleteByID(ctx, "categories", id)
}

// updateName and deleteByID take the table name from a fixed caller set,
// never from request input.
func (r *CatalogRepository) updateName(ctx context.Context, table string, id int64, name string) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE `+table+` SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CatalogRepository) deleteByID(ctx context.Context, table string, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
