package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/repository"
	"github.com/burgir/backoffice/internal/seed"
)

// AdminHandler serves the staff-only surface: system counters and
// demo-data seeding.
type AdminHandler struct {
	Stats  *repository.StatsRepo
	Seeder *seed.Seeder
}

// NewAdminHandler returns an AdminHandler backed by the given
// dependencies.
func NewAdminHandler(stats *repository.StatsRepo, seeder *seed.Seeder) *AdminHandler {
	return &AdminHandler{Stats: stats, Seeder: seeder}
}

// Overview handles GET /v1/admin/overview.
func (h *AdminHandler) Overview(c echo.Context) error {
	o, err := h.Stats.Snapshot(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, o)
}

// Seed handles POST /v1/admin/seed with {"count": n}.
func (h *AdminHandler) Seed(c echo.Context) error {
	var body struct {
		Count int `json:"count"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Seeder.Run(c.Request().Context(), body.Count)
	if err != nil {
		return internalError(c, "seeding failed")
	}
	return c.JSON(http.StatusOK, res)
}
