package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

// UserHandler serves the guest directory.
type UserHandler struct {
	Users *repository.UserRepo
}

// NewUserHandler returns a UserHandler backed by the given repository.
func NewUserHandler(users *repository.UserRepo) *UserHandler {
	return &UserHandler{Users: users}
}

// List handles GET /v1/users.
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.Users.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, users)
}

// Create handles POST /v1/users.
func (h *UserHandler) Create(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Name) == "" {
		return badRequest(c, "name is required")
	}
	u := &model.User{Name: body.Name}
	if err := h.Users.Create(c.Request().Context(), u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return badRequest(c, "user already exists")
		}
		return internalError(c, "could not create user")
	}
	return c.JSON(http.StatusCreated, u)
}

// Get handles GET /v1/users/:identifier where the identifier is either
// a numeric ID or a name.
func (h *UserHandler) Get(c echo.Context) error {
	ident := c.Param("identifier")
	ctx := c.Request().Context()

	var (
		u   *model.User
		err error
	)
	if id, ok := parseID(ident); ok {
		u, err = h.Users.GetByID(ctx, id)
	} else {
		u, err = h.Users.GetByName(ctx, ident)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, u)
}

// Delete handles DELETE /v1/users/:identifier. Only numeric IDs are
// accepted; the response is a 200 with a confirmation message.
func (h *UserHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("identifier"))
	if !ok {
		return badRequest(c, "user id must be numeric")
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "could not delete user")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
