package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/repository"
)

// PantryHandler serves per-user ingredient inventories.
type PantryHandler struct {
	Pantry *repository.PantryRepo
	Users  *repository.UserRepo
}

// NewPantryHandler returns a PantryHandler backed by the given
// repositories.
func NewPantryHandler(pantry *repository.PantryRepo, users *repository.UserRepo) *PantryHandler {
	return &PantryHandler{Pantry: pantry, Users: users}
}

func (h *PantryHandler) resolveUser(c echo.Context) (int64, error) {
	ident := c.Param("identifier")
	if id, ok := parseID(ident); ok {
		u, err := h.Users.GetByID(c.Request().Context(), id)
		if err != nil {
			return 0, err
		}
		return u.ID, nil
	}
	u, err := h.Users.GetByName(c.Request().Context(), ident)
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}

// List handles GET /v1/users/:identifier/ingredients.
func (h *PantryHandler) List(c echo.Context) error {
	userID, err := h.resolveUser(c)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	items, err := h.Pantry.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, items)
}

// Set handles PUT /v1/users/:identifier/ingredients/:ingredientID, upserting
// the stocked quantity.
func (h *PantryHandler) Set(c echo.Context) error {
	userID, err := h.resolveUser(c)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	ingredientID, ok := parseID(c.Param("ingredientID"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	var body struct {
		Quantity float64 `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Quantity < 0 {
		return badRequest(c, "quantity must not be negative")
	}
	if err := h.Pantry.Set(c.Request().Context(), userID, ingredientID, body.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return notFound(c, "user not found")
		case errors.Is(err, repository.ErrIngredientNotFound):
			return notFound(c, "ingredient not found")
		}
		return internalError(c, "could not update pantry")
	}
	items, err := h.Pantry.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, items)
}

// Remove handles DELETE /v1/users/:identifier/ingredients/:ingredientID.
func (h *PantryHandler) Remove(c echo.Context) error {
	userID, err := h.resolveUser(c)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	ingredientID, ok := parseID(c.Param("ingredientID"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	if err := h.Pantry.Remove(c.Request().Context(), userID, ingredientID); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return notFound(c, "ingredient not in pantry")
		}
		return internalError(c, "could not update pantry")
	}
	return c.NoContent(http.StatusNoContent)
}

// ShoppingList handles GET /v1/users/:identifier/shopping-list/:foodItemID,
// reporting what the user still needs to buy to cook the food item.
func (h *PantryHandler) ShoppingList(c echo.Context) error {
	userID, err := h.resolveUser(c)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	foodItemID, ok := parseID(c.Param("foodItemID"))
	if !ok {
		return badRequest(c, "food item id must be numeric")
	}
	missing, err := h.Pantry.ShoppingList(c.Request().Context(), userID, foodItemID)
	if err != nil {
		if errors.Is(err, repository.ErrFoodItemNotFound) {
			return notFound(c, "food item not found")
		}
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, missing)
}
