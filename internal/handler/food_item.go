package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/repository"
)

// FoodItemHandler serves recipes and their ingredient lists.
type FoodItemHandler struct {
	FoodItems *repository.FoodItemRepo
}

// NewFoodItemHandler returns a FoodItemHandler backed by the given
// repository.
func NewFoodItemHandler(foodItems *repository.FoodItemRepo) *FoodItemHandler {
	return &FoodItemHandler{FoodItems: foodItems}
}

type recipeLineBody struct {
	IngredientID int64   `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

func toIngredientLines(in []recipeLineBody) ([]repository.IngredientLine, string) {
	lines := make([]repository.IngredientLine, 0, len(in))
	for _, l := range in {
		if l.IngredientID <= 0 {
			return nil, "ingredient_id must be positive"
		}
		if l.Quantity <= 0 {
			return nil, "quantity must be positive"
		}
		lines = append(lines, repository.IngredientLine{
			IngredientID: l.IngredientID,
			Quantity:     l.Quantity,
		})
	}
	return lines, ""
}

// List handles GET /v1/food-items.
func (h *FoodItemHandler) List(c echo.Context) error {
	items, err := h.FoodItems.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/food-items/:id.
func (h *FoodItemHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "food item id must be numeric")
	}
	item, err := h.FoodItems.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFoodItemNotFound) {
			return notFound(c, "food item not found")
		}
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, item)
}

// Create handles POST /v1/food-items.
func (h *FoodItemHandler) Create(c echo.Context) error {
	var body struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Ingredients []recipeLineBody `json:"ingredients"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return badRequest(c, "name is required")
	}
	lines, msg := toIngredientLines(body.Ingredients)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Request().Context()
	id, err := h.FoodItems.Create(ctx, body.Name, body.Description, lines)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return badRequest(c, "food item already exists")
		case errors.Is(err, repository.ErrIngredientNotFound):
			return notFound(c, "ingredient not found")
		}
		return internalError(c, "could not create food item")
	}
	item, err := h.FoodItems.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusCreated, item)
}

// Update handles PUT /v1/food-items/:id. Listed ingredient lines are
// upserted; omitted fields keep their stored values.
func (h *FoodItemHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "food item id must be numeric")
	}
	var body struct {
		Name        string           `json:"name"`
		Description string           `json:"description"`
		Ingredients []recipeLineBody `json:"ingredients"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	lines, msg := toIngredientLines(body.Ingredients)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Request().Context()
	if err := h.FoodItems.Update(ctx, id, body.Name, body.Description, lines); err != nil {
		switch {
		case errors.Is(err, repository.ErrFoodItemNotFound):
			return notFound(c, "food item not found")
		case errors.Is(err, repository.ErrIngredientNotFound):
			return notFound(c, "ingredient not found")
		case errors.Is(err, repository.ErrDuplicate):
			return badRequest(c, "food item name already taken")
		}
		return internalError(c, "could not update food item")
	}
	item, err := h.FoodItems.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, item)
}

// RemoveIngredient handles DELETE /v1/food-items/:id/ingredients/:ingredientID.
func (h *FoodItemHandler) RemoveIngredient(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "food item id must be numeric")
	}
	ingredientID, ok := parseID(c.Param("ingredientID"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	if err := h.FoodItems.RemoveIngredient(c.Request().Context(), id, ingredientID); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return notFound(c, "ingredient not on this food item")
		}
		return internalError(c, "could not remove ingredient")
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete handles DELETE /v1/food-items/:id.
func (h *FoodItemHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "food item id must be numeric")
	}
	if err := h.FoodItems.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrFoodItemNotFound) {
			return notFound(c, "food item not found")
		}
		return internalError(c, "could not delete food item")
	}
	return c.NoContent(http.StatusNoContent)
}
