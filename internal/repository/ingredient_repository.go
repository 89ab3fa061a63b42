package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/burgir/backoffice/internal/model"
)

// ErrIngredientNotFound is returned when an ingredient lookup fails.
var ErrIngredientNotFound = errors.New("ingredient not found")

// IngredientRepo provides CRUD operations for ingredients.
type IngredientRepo struct {
	db *sql.DB
}

// NewIngredientRepo returns an IngredientRepo bound to the given database.
func NewIngredientRepo(db *sql.DB) *IngredientRepo { return &IngredientRepo{db: db} }

// Create inserts an ingredient and returns its generated ID. A name
// collision maps to ErrDuplicate.
func (r *IngredientRepo) Create(ctx context.Context, name, unit string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ingredients (name, unit) VALUES (?, ?)`, name, unit)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return res.LastInsertId()
}

// GetByID fetches one ingredient.
func (r *IngredientRepo) GetByID(ctx context.Context, id int64) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, unit FROM ingredients WHERE id = ?`, id).
		Scan(&ing.ID, &ing.Name, &ing.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIngredientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetByName fetches one ingredient by its unique name.
func (r *IngredientRepo) GetByName(ctx context.Context, name string) (*model.Ingredient, error) {
	var ing model.Ingredient
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, unit FROM ingredients WHERE name = ?`, name).
		Scan(&ing.ID, &ing.Name, &ing.Unit)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIngredientNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ing, nil
}

// ListAll returns every ingredient ordered by name.
func (r *IngredientRepo) ListAll(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, unit FROM ingredients ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Ingredient, 0)
	for rows.Next() {
		var ing model.Ingredient
		if err := rows.Scan(&ing.ID, &ing.Name, &ing.Unit); err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

// Update rewrites an ingredient's name and unit.
func (r *IngredientRepo) Update(ctx context.Context, id int64, name, unit string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ingredients SET name = ?, unit = ? WHERE id = ?`, name, unit, id)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Distinguish a no-op update from a missing row.
		var one int
		if err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM ingredients WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrIngredientNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes an ingredient; recipe and pantry rows referencing it
// cascade at the schema level.
func (r *IngredientRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIngredientNotFound
	}
	return nil
}
