package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrMealPlanNotFound is returned when a weekly plan lookup fails.
var ErrMealPlanNotFound = errors.New("meal plan not found")

// MealPlanRepo provides CRUD operations for weekly meal plans and the
// per-day lunch/dinner picks attached to them.
type MealPlanRepo struct {
	db *sql.DB
}

// NewMealPlanRepo returns a MealPlanRepo bound to the given database.
func NewMealPlanRepo(db *sql.DB) *MealPlanRepo { return &MealPlanRepo{db: db} }

// DailyMealDetail is one planned day joined with the names of its
// lunch and dinner food items. Either slot may be empty.
type DailyMealDetail struct {
	Day    string  `json:"day"`
	Lunch  *string `json:"lunch"`
	Dinner *string `json:"dinner"`
}

// MealPlanDetail is a weekly plan with all of its planned days.
type MealPlanDetail struct {
	ID        int64             `json:"id"`
	StartDate string            `json:"start_date"`
	Days      []DailyMealDetail `json:"days"`
}

// Create inserts an empty weekly plan starting at startDate and returns
// its generated ID.
func (r *MealPlanRepo) Create(ctx context.Context, startDate time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO weekly_meal_plans (start_date) VALUES (?)`,
		startDate.Format("2006-01-02"))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// SetDay upserts the lunch and dinner picks for one day of a plan. A
// nil pick clears the slot. Unknown plans map to ErrMealPlanNotFound
// and unknown food items to ErrFoodItemNotFound.
func (r *MealPlanRepo) SetDay(ctx context.Context, planID int64, day string, lunchID, dinnerID *int64) error {
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
		`SELECT 1 FROM weekly_meal_plans WHERE id = ?`, planID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMealPlanNotFound
		}
		return err
	}
	for _, id := range []*int64{lunchID, dinnerID} {
		if id == nil {
			continue
		}
		if err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM food_items WHERE id = ?`, *id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFoodItemNotFound
			}
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO daily_meals (weekly_plan_id, day, lunch_id, dinner_id)
		 VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE lunch_id = VALUES(lunch_id), dinner_id = VALUES(dinner_id)`,
		planID, day, lunchID, dinnerID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches one weekly plan with its planned days.
func (r *MealPlanRepo) GetByID(ctx context.Context, id int64) (*MealPlanDetail, error) {
	details, err := r.list(ctx, `WHERE p.id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, ErrMealPlanNotFound
	}
	return &details[0], nil
}

// ListAll returns every weekly plan, newest start date first.
func (r *MealPlanRepo) ListAll(ctx context.Context) ([]MealPlanDetail, error) {
	return r.list(ctx, "")
}

func (r *MealPlanRepo) list(ctx context.Context, where string, args ...any) ([]MealPlanDetail, error) {
	q := `SELECT p.id, p.start_date FROM weekly_meal_plans p ` + where + ` ORDER BY p.start_date DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]MealPlanDetail, 0)
	index := make(map[int64]int)
	for rows.Next() {
		var d MealPlanDetail
		var startDate time.Time
		if err := rows.Scan(&d.ID, &startDate); err != nil {
			return nil, err
		}
		d.StartDate = startDate.Format("2006-01-02")
		d.Days = []DailyMealDetail{}
		index[d.ID] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	dayQ := `SELECT d.weekly_plan_id, d.day, l.name, n.name
	         FROM daily_meals d
	         JOIN weekly_meal_plans p ON p.id = d.weekly_plan_id
	         LEFT JOIN food_items l ON l.id = d.lunch_id
	         LEFT JOIN food_items n ON n.id = d.dinner_id ` + where + `
	         ORDER BY d.weekly_plan_id, FIELD(d.day, 'Mon','Tue','Wed','Thu','Fri','Sat','Sun')`
	drows, err := r.db.QueryContext(ctx, dayQ, args...)
	if err != nil {
		return nil, err
	}
	defer drows.Close()
	for drows.Next() {
		var planID int64
		var dm DailyMealDetail
		var lunch, dinner sql.NullString
		if err := drows.Scan(&planID, &dm.Day, &lunch, &dinner); err != nil {
			return nil, err
		}
		if lunch.Valid {
			dm.Lunch = &lunch.String
		}
		if dinner.Valid {
			dm.Dinner = &dinner.String
		}
		if idx, ok := index[planID]; ok {
			out[idx].Days = append(out[idx].Days, dm)
		}
	}
	return out, drows.Err()
}

// Delete removes a weekly plan; its planned days cascade at the schema
// level.
func (r *MealPlanRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weekly_meal_plans WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMealPlanNotFound
	}
	return nil
}
