package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ForeverInLaw/airdealer/models"
)

// OrderRepository is the core repository for Order entities.
// It handles CRUD, the conditional status write, and dashboard aggregates.
type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, status, payment_method, total_amount, delivery_method, delivery_address, delivery_cost, final_total_amount, admin_notes, created_at, updated_at`

func scanOrder(row interface{ Scan(dest ...any) error }) (*models.Order, error) {
	var o models.Order
	var status string
	var deliveryMethod, deliveryAddress, adminNotes sql.NullString
	var deliveryCost, finalTotal decimal.NullDecimal
	err := row.Scan(&o.ID, &o.UserID, &status, &o.PaymentMethod, &o.TotalAmount,
		&deliveryMethod, &deliveryAddress, &deliveryCost, &finalTotal, &adminNotes,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)
	if deliveryMethod.Valid {
		o.DeliveryMethod = &deliveryMethod.String
	}
	if deliveryAddress.Valid {
		o.DeliveryAddress = &deliveryAddress.String
	}
	if deliveryCost.Valid {
		o.DeliveryCost = &deliveryCost.Decimal
	}
	if finalTotal.Valid {
		o.FinalTotalAmount = &finalTotal.Decimal
	}
	if adminNotes.Valid {
		o.AdminNotes = &adminNotes.String
	}
	return &o, nil
}

// Create inserts a new order and its items in one transaction.
// Status defaults to 'pending_admin_approval' if empty.
func (r *OrderRepository) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if o == nil {
		return nil, errors.New("order is nil")
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPendingAdminApproval
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status, payment_method, total_amount, delivery_method, delivery_address, delivery_cost, final_total_amount, admin_notes) VALUES (?,?,?,?,?,?,?,?,?)`,
		o.UserID, string(o.Status), o.PaymentMethod, o.TotalAmount.String(),
		o.DeliveryMethod, o.DeliveryAddress, decimalPtrString(o.DeliveryCost), decimalPtrString(o.FinalTotalAmount), o.AdminNotes)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	for i := range o.Items {
		it := &o.Items[i]
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, location_id, quantity, price_at_order) VALUES (?,?,?,?,?)`,
			id, it.ProductID, it.LocationID, it.Quantity, it.PriceAtOrder.String()); err != nil {
			_ = tx.Rollback()
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	o2, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o2 == nil {
		return nil, fmt.Errorf("created order not found: id=%d", id)
	}
	return o2, nil
}

func decimalPtrString(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

// GetByID fetches an order and its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	o, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := r.itemsForOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return o, nil
}

func (r *OrderRepository) itemsForOrder(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, location_id, quantity, price_at_order FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.LocationID, &it.Quantity, &it.PriceAtOrder); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ListOrdersParams represents filters and pagination for List.
type ListOrdersParams struct {
	Statuses []models.OrderStatus
	UserID   *int64
	Limit    int
	Offset   int
}

// List returns orders matching the filters ordered by created_at desc, id desc.
// Items are not loaded; use GetByID for the full order.
func (r *OrderRepository) List(ctx context.Context, p ListOrdersParams) ([]models.Order, error) {
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var where []string
	var args []any
	if len(p.Statuses) > 0 {
		placeholders := make([]string, len(p.Statuses))
		for i, s := range p.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		where = append(where, "status IN ("+strings.Join(placeholders, ",")+")")
	}
	if p.UserID != nil {
		where = append(where, "user_id = ?")
		args = append(args, *p.UserID)
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, p.Limit, p.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// UpdateStatusCAS updates status (and optionally admin_notes) only when the
// stored status still equals from. Returns the number of rows affected: zero
// means the row is missing or another writer already moved the status, and
// the caller decides which. A non-nil note replaces the stored note wholesale.
func (r *OrderRepository) UpdateStatusCAS(ctx context.Context, id int64, from, to models.OrderStatus, note *string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var res sql.Result
	var err error
	if note != nil {
		res, err = r.db.ExecContext(ctx,
			`UPDATE orders SET status = ?, admin_notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
			string(to), *note, id, string(from))
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
			string(to), id, string(from))
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountByStatus returns the number of orders per status. Statuses with no
// orders are absent from the map.
func (r *OrderRepository) CountByStatus(ctx context.Context) (map[models.OrderStatus]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[models.OrderStatus]int{}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[models.OrderStatus(s)] = n
	}
	return out, rows.Err()
}

// RevenueRow carries the two monetary columns revenue is derived from.
type RevenueRow struct {
	FinalTotalAmount *decimal.Decimal
	TotalAmount      decimal.Decimal
}

// RevenueRows returns the amounts of all orders that count toward revenue
// (completed or delivered). Summation is left to the caller so it stays in
// decimal arithmetic end to end.
func (r *OrderRepository) RevenueRows(ctx context.Context) ([]RevenueRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT final_total_amount, total_amount FROM orders WHERE status IN (?, ?)`,
		string(models.OrderStatusCompleted), string(models.OrderStatusDelivered))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RevenueRow
	for rows.Next() {
		var row RevenueRow
		var ft decimal.NullDecimal
		if err := rows.Scan(&ft, &row.TotalAmount); err != nil {
			return nil, err
		}
		if ft.Valid {
			row.FinalTotalAmount = &ft.Decimal
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
