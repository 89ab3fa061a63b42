package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

// TableHandler serves the restaurant table inventory.
type TableHandler struct {
	Tables *repository.TableRepo
}

// NewTableHandler returns a TableHandler backed by the given repository.
func NewTableHandler(tables *repository.TableRepo) *TableHandler {
	return &TableHandler{Tables: tables}
}

// List handles GET /v1/tables.
func (h *TableHandler) List(c echo.Context) error {
	tables, err := h.Tables.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, tables)
}

// Create handles POST /v1/tables. Occupancy bounds must be positive
// and min strictly below max, otherwise no party size could ever be
// admitted.
func (h *TableHandler) Create(c echo.Context) error {
	var body struct {
		MinPeople int `json:"min_people"`
		MaxPeople int `json:"max_people"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.MinPeople < 1 {
		return badRequest(c, "min_people must be at least 1")
	}
	if body.MinPeople >= body.MaxPeople {
		return badRequest(c, "min_people must be less than max_people")
	}
	t := &model.Table{MinPeople: body.MinPeople, MaxPeople: body.MaxPeople}
	if err := h.Tables.Create(c.Request().Context(), t); err != nil {
		return internalError(c, "could not create table")
	}
	return c.JSON(http.StatusCreated, t)
}
