package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ForeverInLaw/airdealer/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row interface{ Scan(dest ...any) error }) (*models.Product, error) {
	var p models.Product
	var variation sql.NullString
	err := row.Scan(&p.ID, &p.Name, &p.ManufacturerID, &p.CategoryID, &variation,
		&p.Price, &p.Cost, &p.CreatedAt, &p.UpdatedAt, &p.ManufacturerName, &p.CategoryName)
	if err != nil {
		return nil, err
	}
	if variation.Valid {
		p.Variation = &variation.String
	}
	return &p, nil
}

const productSelect = `
SELECT p.id, p.name, p.manufacturer_id, p.category_id, p.variation, p.price, p.cost, p.created_at, p.updated_at,
       m.name, c.name
FROM products p
JOIN manufacturers m ON m.id = p.manufacturer_id
JOIN categories c ON c.id = p.category_id`

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	if p == nil {
		return nil, errors.New("product is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, manufacturer_id, category_id, variation, price, cost) VALUES (?,?,?,?,?,?)`,
		p.Name, p.ManufacturerID, p.CategoryID, p.Variation, p.Price.String(), p.Cost.String())
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+` WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *ProductRepository) List(ctx context.Context, limit, offset int) ([]models.Product, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, productSelect+` ORDER BY p.id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	if p == nil {
		return errors.New("product is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, manufacturer_id = ?, category_id = ?, variation = ?, price = ?, cost = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		p.Name, p.ManufacturerID, p.CategoryID, p.Variation, p.Price.String(), p.Cost.String(), p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, err
}

// Stock operations. The (product_id, location_id) pair is the primary key;
// UpsertStock creates the row on first write.

func (r *ProductRepository) UpsertStock(ctx context.Context, productID, locationID int64, quantity int) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO product_stock (product_id, location_id, quantity) VALUES (?,?,?)
ON CONFLICT(product_id, location_id) DO UPDATE SET quantity = excluded.quantity, updated_at = CURRENT_TIMESTAMP`,
		productID, locationID, quantity)
	return err
}

func (r *ProductRepository) DeleteStock(ctx context.Context, productID, locationID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM product_stock WHERE product_id = ? AND location_id = ?`, productID, locationID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *ProductRepository) ListStock(ctx context.Context, limit, offset int) ([]models.ProductStock, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
SELECT s.product_id, s.location_id, s.quantity, s.updated_at, p.name, l.name
FROM product_stock s
JOIN products p ON p.id = s.product_id
JOIN locations l ON l.id = s.location_id
ORDER BY s.product_id, s.location_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.ProductStock
	for rows.Next() {
		var s models.ProductStock
		if err := rows.Scan(&s.ProductID, &s.LocationID, &s.Quantity, &s.UpdatedAt, &s.ProductName, &s.LocationName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
