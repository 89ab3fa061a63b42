package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/burgir/backoffice/internal/model"
)

// ErrTableNotFound is returned when a table lookup fails.
var ErrTableNotFound = errors.New("table not found")

// TableRepo provides operations on restaurant tables.
type TableRepo struct {
	db *sql.DB
}

// NewTableRepo returns a TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

// Create inserts a table and populates its generated ID.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO restaurant_tables (min_people, max_people) VALUES (?, ?)`,
		t.MinPeople, t.MaxPeople)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// GetByID fetches a table by primary key.
func (r *TableRepo) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	var t model.Table
	err := r.db.QueryRowContext(ctx,
		`SELECT id, min_people, max_people FROM restaurant_tables WHERE id = ?`, id).
		Scan(&t.ID, &t.MinPeople, &t.MaxPeople)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns every table ordered by ID.
func (r *TableRepo) ListAll(ctx context.Context) ([]model.Table, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, min_people, max_people FROM restaurant_tables ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Table, 0)
	for rows.Next() {
		var t model.Table
		if err := rows.Scan(&t.ID, &t.MinPeople, &t.MaxPeople); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
