package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/burgir/backoffice/internal/model"
)

// ErrFoodItemNotFound is returned when a food item lookup fails.
var ErrFoodItemNotFound = errors.New("food item not found")

// FoodItemRepo provides CRUD operations for food items (recipes) and
// their ingredient lists.
type FoodItemRepo struct {
	db *sql.DB
}

// NewFoodItemRepo returns a FoodItemRepo bound to the given database.
func NewFoodItemRepo(db *sql.DB) *FoodItemRepo { return &FoodItemRepo{db: db} }

// RecipeIngredient is one line of a recipe joined with the ingredient
// it references.
type RecipeIngredient struct {
	IngredientID int64   `json:"ingredient_id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
}

// FoodItemDetail is a food item with its full ingredient list.
type FoodItemDetail struct {
	model.FoodItem
	Ingredients []RecipeIngredient `json:"ingredients"`
}

// IngredientLine is one requested recipe line on create or update.
type IngredientLine struct {
	IngredientID int64
	Quantity     float64
}

// Create inserts a food item with its recipe lines in one transaction.
// A line referencing an unknown ingredient aborts the whole recipe with
// ErrIngredientNotFound; a name collision maps to ErrDuplicate.
func (r *FoodItemRepo) Create(ctx context.Context, name, description string, lines []IngredientLine) (int64, error) {
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
		`INSERT INTO food_items (name, description) VALUES (?, ?)`, name, description)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	foodItemID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, l := range lines {
		if err := upsertRecipeLineTx(ctx, tx, foodItemID, l); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return foodItemID, nil
}

func upsertRecipeLineTx(ctx context.Context, tx *sql.Tx, foodItemID int64, l IngredientLine) error {
	var one int
	if err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM ingredients WHERE id = ?`, l.IngredientID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrIngredientNotFound
		}
		return err
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO food_item_ingredients (food_item_id, ingredient_id, quantity)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE quantity = VALUES(quantity)`,
		foodItemID, l.IngredientID, l.Quantity)
	return err
}

// Update rewrites a food item's fields and upserts the given recipe
// lines. Empty fields and a nil line slice leave the corresponding part
// untouched.
func (r *FoodItemRepo) Update(ctx context.Context, id int64, name, description string, lines []IngredientLine) error {
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
		`SELECT 1 FROM food_items WHERE id = ?`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrFoodItemNotFound
		}
		return err
	}
	if name != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE food_items SET name = ? WHERE id = ?`, name, id); err != nil {
			if isDuplicate(err) {
				return ErrDuplicate
			}
			return err
		}
	}
	if description != "" {
		if _, err := tx.ExecContext(ctx,
			`UPDATE food_items SET description = ? WHERE id = ?`, description, id); err != nil {
			return err
		}
	}
	for _, l := range lines {
		if err := upsertRecipeLineTx(ctx, tx, id, l); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches one food item with its ingredient list.
func (r *FoodItemRepo) GetByID(ctx context.Context, id int64) (*FoodItemDetail, error) {
	details, err := r.list(ctx, `WHERE f.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrFoodItemNotFound
	}
	return &details[0], nil
}

// ListAll returns every food item with its ingredient list, ordered by
// name.
func (r *FoodItemRepo) ListAll(ctx context.Context) ([]FoodItemDetail, error) {
	return r.list(ctx, "")
}

func (r *FoodItemRepo) list(ctx context.Context, where string, args ...any) ([]FoodItemDetail, error) {
	q := `SELECT f.id, f.name, f.description FROM food_items f ` + where + ` ORDER BY f.name`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]FoodItemDetail, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var d FoodItemDetail
		if err := rows.Scan(&d.ID, &d.Name, &d.Description); err != nil {
			return nil, err
		}
		d.Ingredients = []RecipeIngredient{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lineQ := `SELECT fi.food_item_id, fi.ingredient_id, i.name, i.unit, fi.quantity
	          FROM food_item_ingredients fi
	          JOIN ingredients i ON i.id = fi.ingredient_id
	          JOIN food_items f ON f.id = fi.food_item_id ` + where + `
	          ORDER BY fi.food_item_id, i.name`
	lrows, err := r.db.QueryContext(ctx, lineQ, args...)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var foodItemID int64
		var ri RecipeIngredient
		if err := lrows.Scan(&foodItemID, &ri.IngredientID, &ri.Name, &ri.Unit, &ri.Quantity); err != nil {
			return nil, err
		}
		if idx, ok := index[foodItemID]; ok {
			out[idx].Ingredients = append(out[idx].Ingredients, ri)
		}
	}
	return out, lrows.Err()
}

// RemoveIngredient drops one line from a recipe.
func (r *FoodItemRepo) RemoveIngredient(ctx context.Context, foodItemID, ingredientID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM food_item_ingredients WHERE food_item_id = ? AND ingredient_id = ?`,
		foodItemID, ingredientID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrIngredientNotFound
	}
	return nil
}

// Delete removes a food item; its recipe lines cascade and meal plan
// slots referencing it are nulled at the schema level.
func (r *FoodItemRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM food_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFoodItemNotFound
	}
	return nil
}
