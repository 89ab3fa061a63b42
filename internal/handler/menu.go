package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

// MenuHandler serves the restaurant menu.
type MenuHandler struct {
	Menu *repository.MenuRepo
}

// NewMenuHandler returns a MenuHandler backed by the given repository.
func NewMenuHandler(menu *repository.MenuRepo) *MenuHandler {
	return &MenuHandler{Menu: menu}
}

// List handles GET /v1/menu and returns the menu grouped by type.
func (h *MenuHandler) List(c echo.Context) error {
	items, err := h.Menu.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	grouped := make(map[string][]model.MenuItem)
	for _, it := range items {
		grouped[it.Type] = append(grouped[it.Type], it)
	}
	return c.JSON(http.StatusOK, grouped)
}

// ListByType handles GET /v1/menu/:type.
func (h *MenuHandler) ListByType(c echo.Context) error {
	items, err := h.Menu.ListByType(c.Request().Context(), c.Param("type"))
	if err != nil {
		return internalError(c, "db error")
	}
	if len(items) == 0 {
		return notFound(c, "no menu items of that type")
	}
	return c.JSON(http.StatusOK, items)
}

// Create handles POST /v1/menu.
func (h *MenuHandler) Create(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Type        string  `json:"type"`
		Price       float64 `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return badRequest(c, "name is required")
	}
	if strings.TrimSpace(body.Type) == "" {
		return badRequest(c, "type is required")
	}
	if body.Price < 0 {
		return badRequest(c, "price must not be negative")
	}
	m := &model.MenuItem{
		Name:        body.Name,
		Description: body.Description,
		Type:        body.Type,
		Price:       body.Price,
	}
	if err := h.Menu.Create(c.Request().Context(), m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return badRequest(c, "menu item already exists")
		}
		return internalError(c, "could not create menu item")
	}
	return c.JSON(http.StatusCreated, m)
}
