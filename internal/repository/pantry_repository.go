package repository

import (
	"context"
	"database/sql"
	"errors"
)

// PantryRepo tracks which ingredients each user has at home and in
// what quantity.
type PantryRepo struct {
	db *sql.DB
}

// NewPantryRepo returns a PantryRepo bound to the given database.
func NewPantryRepo(db *sql.DB) *PantryRepo { return &PantryRepo{db: db} }

// PantryItem is one pantry row joined with its ingredient.
type PantryItem struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
}

// Set upserts the quantity of one ingredient for one user. Unknown
// users map to ErrUserNotFound and unknown ingredients to
// ErrIngredientNotFound.
func (r *PantryRepo) Set(ctx context.Context, userID, ingredientID int64, quantity float64) error {
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
		`SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM ingredients WHERE id = ?`, ingredientID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrIngredientNotFound
		}
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_ingredients (user_id, ingredient_id, quantity)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`,
		userID, ingredientID, quantity); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByUser returns a user's pantry ordered by ingredient name.
func (r *PantryRepo) ListByUser(ctx context.Context, userID int64) ([]PantryItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT ui.ingredient_id, i.name, i.unit, ui.quantity
		 FROM user_ingredients ui
		 JOIN ingredients i ON i.id = ui.ingredient_id
		 WHERE ui.user_id = ?
		 ORDER BY i.name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PantryItem, 0)
	for rows.Next() {
		var p PantryItem
		if err := rows.Scan(&p.IngredientID, &p.Name, &p.Unit, &p.Quantity); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Remove drops one ingredient from a user's pantry.
func (r *PantryRepo) Remove(ctx context.Context, userID, ingredientID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM user_ingredients WHERE user_id = ? AND ingredient_id = ?`,
		userID, ingredientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIngredientNotFound
	}
	return nil
}

// MissingIngredient is an ingredient a recipe needs more of than the
// user has on hand.
type MissingIngredient struct {
	Name     string  `json:"name"`
	Unit     string  `json:"unit"`
	Required float64 `json:"required"`
	OnHand   float64 `json:"on_hand"`
}

// ShoppingList computes which ingredients of a food item the user still
// needs to buy, comparing recipe quantities against the pantry.
func (r *PantryRepo) ShoppingList(ctx context.Context, userID, foodItemID int64) ([]MissingIngredient, error) {
	var one int
	if err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM food_items WHERE id = ?`, foodItemID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFoodItemNotFound
		}
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT i.name, i.unit, fi.quantity, COALESCE(ui.quantity, 0)
		 FROM food_item_ingredients fi
		 JOIN ingredients i ON i.id = fi.ingredient_id
		 LEFT JOIN user_ingredients ui
		   ON ui.ingredient_id = fi.ingredient_id AND ui.user_id = ?
		 WHERE fi.food_item_id = ? AND fi.quantity > COALESCE(ui.quantity, 0)
		 ORDER BY i.name`, userID, foodItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MissingIngredient, 0)
	for rows.Next() {
		var m MissingIngredient
		if err := rows.Scan(&m.Name, &m.Unit, &m.Required, &m.OnHand); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
