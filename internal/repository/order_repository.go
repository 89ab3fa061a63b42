package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrOrderNotFound is returned when an order lookup fails.
var ErrOrderNotFound = errors.New("order not found")

// OrderRepo provides CRUD operations for orders and their items. An
// order and its items are always written inside one transaction so a
// rejected item never leaves a partial order behind.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns an OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderItemDetail is an order line joined with its menu item.
type OrderItemDetail struct {
	MenuItemID int64   `json:"item_id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Amount     int     `json:"amount"`
}

// OrderDetail is an order joined with its owner's name and lines.
type OrderDetail struct {
	ID        int64             `json:"id"`
	UserName  string            `json:"user"`
	Status    string            `json:"status"`
	CreatedAt string            `json:"created_at"`
	Items     []OrderItemDetail `json:"order_items"`
}

// CreateLine is one requested order line: a menu item reference and a
// quantity.
type CreateLine struct {
	MenuItemID int64
	Amount     int
}

// Create inserts an order with its lines in one transaction. A line
// referencing an unknown menu item aborts the whole order with
// ErrMenuItemNotFound. The generated order ID is returned.
func (r *OrderRepo) Create(ctx context.Context, userID int64, status string, lines []CreateLine) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (user_id, status) VALUES (?, ?)`, userID, status)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, l := range lines {
		if err := insertLineTx(ctx, tx, orderID, l); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return orderID, nil
}

func insertLineTx(ctx context.Context, tx *sql.Tx, orderID int64, l CreateLine) error {
	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM menu_items WHERE id = ?`, l.MenuItemID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMenuItemNotFound
		}
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO order_items (order_id, menu_item_id, amount) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE amount = VALUES(amount)`,
		orderID, l.MenuItemID, l.Amount)
	return err
}

// Update changes an order's status and upserts the given lines. Nil or
// empty arguments leave the corresponding part untouched.
func (r *OrderRepo) Update(ctx context.Context, orderID int64, status string, lines []CreateLine) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM orders WHERE id = ?`, orderID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		return err
	}
	if status != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE orders SET status = ? WHERE id = ?`, status, orderID); err != nil {
			return err
		}
	}
	for _, l := range lines {
		if err := insertLineTx(ctx, tx, orderID, l); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches an order with its lines and owner name.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*OrderDetail, error) {
	details, err := r.list(ctx, `WHERE o.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrOrderNotFound
	}
	return &details[0], nil
}

// ListAll returns every order, newest first.
func (r *OrderRepo) ListAll(ctx context.Context) ([]OrderDetail, error) {
	return r.list(ctx, "")
}

// ListByStatus returns all orders in one status.
func (r *OrderRepo) ListByStatus(ctx context.Context, status string) ([]OrderDetail, error) {
	return r.list(ctx, `WHERE o.status = ?`, status)
}

// ListByUser returns all orders placed by one user.
func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]OrderDetail, error) {
	return r.list(ctx, `WHERE o.user_id = ?`, userID)
}

func (r *OrderRepo) list(ctx context.Context, where string, args ...any) ([]OrderDetail, error) {
	q := `SELECT o.id, u.name, o.status, o.created_at
	      FROM orders o
	      JOIN users u ON u.id = o.user_id ` + where + `
	      ORDER BY o.id DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]OrderDetail, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var d OrderDetail
		var createdAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.UserName, &d.Status, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			d.CreatedAt = createdAt.Time.UTC().Format(time.RFC3339)
		}
		d.Items = []OrderItemDetail{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// Populate lines for all matched orders in a second pass.
	lineQ := `SELECT oi.order_id, oi.menu_item_id, m.name, m.price, oi.amount
	          FROM order_items oi
	          JOIN menu_items m ON m.id = oi.menu_item_id
	          JOIN orders o ON o.id = oi.order_id ` + where + `
	          ORDER BY oi.order_id, m.name`
	lrows, err := r.db.QueryContext(ctx, lineQ, args...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var orderID int64
		var it OrderItemDetail
		if err := lrows.Scan(&orderID, &it.MenuItemID, &it.Name, &it.Price, &it.Amount); err != nil {
			return nil, err
		}
		if idx, ok := index[orderID]; ok {
			out[idx].Items = append(out[idx].Items, it)
		}
	}
	return out, lrows.Err()
}

// Delete removes an order; its lines cascade at the schema level.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOrderNotFound
	}
	return nil
}
