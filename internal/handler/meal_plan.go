package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

// MealPlanHandler serves weekly meal plans and their daily picks.
type MealPlanHandler struct {
	Plans     *repository.MealPlanRepo
	FoodItems *repository.FoodItemRepo
}

// NewMealPlanHandler returns a MealPlanHandler backed by the given
// repositories.
func NewMealPlanHandler(plans *repository.MealPlanRepo, foodItems *repository.FoodItemRepo) *MealPlanHandler {
	return &MealPlanHandler{Plans: plans, FoodItems: foodItems}
}

// List handles GET /v1/weekly-plans.
func (h *MealPlanHandler) List(c echo.Context) error {
	plans, err := h.Plans.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, plans)
}

// Get handles GET /v1/weekly-plans/:id.
func (h *MealPlanHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "plan id must be numeric")
	}
	plan, err := h.Plans.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrMealPlanNotFound) {
			return notFound(c, "meal plan not found")
		}
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, plan)
}

// Create handles POST /v1/weekly-plans with {"start_date": "YYYY-MM-DD"}.
func (h *MealPlanHandler) Create(c echo.Context) error {
	var body struct {
		StartDate string `json:"start_date"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return badRequest(c, "start_date must be YYYY-MM-DD")
	}
	ctx := c.Request().Context()
	id, err := h.Plans.Create(ctx, start)
	if err != nil {
		return internalError(c, "could not create meal plan")
	}
	plan, err := h.Plans.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusCreated, plan)
}

// SetDay handles PUT /v1/weekly-plans/:id/days/:day, upserting the
// day's lunch and dinner picks. A null or omitted pick clears the slot.
func (h *MealPlanHandler) SetDay(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "plan id must be numeric")
	}
	day := c.Param("day")
	if !model.ValidMealPlanDay(day) {
		return badRequest(c, "day must be one of Mon..Sun")
	}
	var body struct {
		Lunch  *int64 `json:"lunch"`
		Dinner *int64 `json:"dinner"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	if err := h.Plans.SetDay(ctx, id, day, body.Lunch, body.Dinner); err != nil {
		switch {
		case errors.Is(err, repository.ErrMealPlanNotFound):
			return notFound(c, "meal plan not found")
		case errors.Is(err, repository.ErrFoodItemNotFound):
			return notFound(c, "food item not found")
		}
		return internalError(c, "could not update meal plan")
	}
	plan, err := h.Plans.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, plan)
}

// Delete handles DELETE /v1/weekly-plans/:id.
func (h *MealPlanHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "plan id must be numeric")
	}
	if err := h.Plans.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMealPlanNotFound) {
			return notFound(c, "meal plan not found")
		}
		return internalError(c, "could not delete meal plan")
	}
	return c.NoContent(http.StatusNoContent)
}
