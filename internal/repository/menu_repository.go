package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/burgir/backoffice/internal/model"
)

// ErrMenuItemNotFound is returned when a menu item lookup fails.
var ErrMenuItemNotFound = errors.New("menu item not found")

// MenuRepo provides operations on menu items.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// Create inserts a menu item and populates its generated ID. A name
// that is already on the menu yields ErrDuplicate.
func (r *MenuRepo) Create(ctx context.Context, m *model.MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO menu_items (name, description, type, price) VALUES (?, ?, ?, ?)`,
		m.Name, m.Description, m.Type, m.Price)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

// GetByID fetches a menu item by primary key.
func (r *MenuRepo) GetByID(ctx context.Context, id int64) (*model.MenuItem, error) {
	var m model.MenuItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, type, price FROM menu_items WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Description, &m.Type, &m.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuItemNotFound
		}
		return nil, err
	}
	return &m, nil
}

// ListAll returns the whole menu ordered by type then name, so the
// handler can group items by type deterministically.
func (r *MenuRepo) ListAll(ctx context.Context) ([]model.MenuItem, error) {
	const q = `SELECT id, name, description, type, price FROM menu_items ORDER BY type, name`
	return r.list(ctx, q)
}

// ListByType returns all menu items of one type ordered by name.
func (r *MenuRepo) ListByType(ctx context.Context, itemType string) ([]model.MenuItem, error) {
	const q = `SELECT id, name, description, type, price FROM menu_items WHERE type = ? ORDER BY name`
	return r.list(ctx, q, itemType)
}

func (r *MenuRepo) list(ctx context.Context, q string, args ...any) ([]model.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.MenuItem, 0)
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Type, &m.Price); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
