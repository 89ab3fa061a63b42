package model

import "time"

// Week days accepted by DailyMeal.Day, in plan order.
var MealPlanDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// ValidMealPlanDay reports whether day is one of the short day labels.
func ValidMealPlanDay(day string) bool {
	for _, d := range MealPlanDays {
		if d == day {
			return true
		}
	}
	return false
}

// WeeklyMealPlan is a plan for the week starting at StartDate (a Monday
// by convention, not enforced).
type WeeklyMealPlan struct {
	ID        int64
	StartDate time.Time
}

// DailyMeal stores the lunch and dinner picks for one day of a weekly
// plan. Either pick may be absent.
type DailyMeal struct {
	ID           int64
	WeeklyPlanID int64
	Day          string
	LunchID      *int64
	DinnerID     *int64
}
