package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/repository"
)

// IngredientHandler serves the ingredient catalog.
type IngredientHandler struct {
	Ingredients *repository.IngredientRepo
}

// NewIngredientHandler returns an IngredientHandler backed by the given
// repository.
func NewIngredientHandler(ingredients *repository.IngredientRepo) *IngredientHandler {
	return &IngredientHandler{Ingredients: ingredients}
}

// List handles GET /v1/ingredients.
func (h *IngredientHandler) List(c echo.Context) error {
	items, err := h.Ingredients.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, items)
}

// Get handles GET /v1/ingredients/:id.
func (h *IngredientHandler) Get(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	ing, err := h.Ingredients.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return notFound(c, "ingredient not found")
		}
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, ing)
}

// Create handles POST /v1/ingredients.
func (h *IngredientHandler) Create(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return badRequest(c, "name is required")
	}
	if strings.TrimSpace(body.Unit) == "" {
		return badRequest(c, "unit is required")
	}
	id, err := h.Ingredients.Create(c.Request().Context(), body.Name, body.Unit)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return badRequest(c, "ingredient already exists")
		}
		return internalError(c, "could not create ingredient")
	}
	ing, err := h.Ingredients.GetByID(c.Request().Context(), id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusCreated, ing)
}

// Update handles PUT /v1/ingredients/:id. Omitted fields keep their
// stored values.
func (h *IngredientHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	var body struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	stored, err := h.Ingredients.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return notFound(c, "ingredient not found")
		}
		return internalError(c, "db error")
	}
	if body.Name == "" {
		body.Name = stored.Name
	}
	if body.Unit == "" {
		body.Unit = stored.Unit
	}
	if err := h.Ingredients.Update(ctx, id, body.Name, body.Unit); err != nil {
		switch {
		case errors.Is(err, repository.ErrIngredientNotFound):
			return notFound(c, "ingredient not found")
		case errors.Is(err, repository.ErrDuplicate):
			return badRequest(c, "ingredient name already taken")
		}
		return internalError(c, "could not update ingredient")
	}
	updated, err := h.Ingredients.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /v1/ingredients/:id.
func (h *IngredientHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("id"))
	if !ok {
		return badRequest(c, "ingredient id must be numeric")
	}
	if err := h.Ingredients.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrIngredientNotFound) {
			return notFound(c, "ingredient not found")
		}
		return internalError(c, "could not delete ingredient")
	}
	return c.NoContent(http.StatusNoContent)
}
