package repository

import (
	"context"
	"database/sql"
)

// StatsRepo serves the admin overview counters.
type StatsRepo struct {
	db *sql.DB
}

// NewStatsRepo returns a StatsRepo bound to the given database.
func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// Overview is a snapshot of entity counts across the system.
type Overview struct {
	Users        int64 `json:"users"`
	Tables       int64 `json:"tables"`
	Reservations int64 `json:"reservations"`
	MenuItems    int64 `json:"menu_items"`
	Orders       int64 `json:"orders"`
	Ingredients  int64 `json:"ingredients"`
	FoodItems    int64 `json:"food_items"`
	MealPlans    int64 `json:"meal_plans"`
}

// Snapshot counts every entity table in one round of queries.
func (r *StatsRepo) Snapshot(ctx context.Context) (*Overview, error) {
	var o Overview
	for _, c := range []struct {
		table string
		dest  *int64
	}{
		{"users", &o.Users},
		{"restaurant_tables", &o.Tables},
		{"reservations", &o.Reservations},
		{"menu_items", &o.MenuItems},
		{"orders", &o.Orders},
		{"ingredients", &o.Ingredients},
		{"food_items", &o.FoodItems},
		{"weekly_meal_plans", &o.MealPlans},
	} {
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM `+c.table).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return &o, nil
}
