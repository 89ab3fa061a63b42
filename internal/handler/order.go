package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

// OrderHandler serves customer orders.
type OrderHandler struct {
	Orders *repository.OrderRepo
	Users  *repository.UserRepo
}

// NewOrderHandler returns an OrderHandler backed by the given repositories.
func NewOrderHandler(orders *repository.OrderRepo, users *repository.UserRepo) *OrderHandler {
	return &OrderHandler{Orders: orders, Users: users}
}

type orderLineBody struct {
	ItemID int64 `json:"item_id"`
	Amount int   `json:"amount"`
}

func toCreateLines(in []orderLineBody) ([]repository.CreateLine, string) {
	lines := make([]repository.CreateLine, 0, len(in))
	for _, l := range in {
		if l.ItemID <= 0 {
			return nil, "order item id must be positive"
		}
		if l.Amount <= 0 {
			return nil, "order item amount must be positive"
		}
		lines = append(lines, repository.CreateLine{MenuItemID: l.ItemID, Amount: l.Amount})
	}
	return lines, ""
}

// List handles GET /v1/orders.
func (h *OrderHandler) List(c echo.Context) error {
	orders, err := h.Orders.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, orders)
}

// Create handles POST /v1/orders. The body names the ordering user,
// an optional status (default pending) and at least one line.
func (h *OrderHandler) Create(c echo.Context) error {
	var body struct {
		User   string          `json:"user"`
		Status string          `json:"status"`
		Items  []orderLineBody `json:"order_items"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.User == "" {
		return badRequest(c, "user is required")
	}
	if len(body.Items) == 0 {
		return badRequest(c, "order_items is required")
	}
	status := body.Status
	if status == "" {
		status = model.OrderStatusPending
	}
	if !model.ValidOrderStatus(status) {
		return badRequest(c, "invalid order status")
	}
	lines, msg := toCreateLines(body.Items)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByName(ctx, body.User)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	orderID, err := h.Orders.Create(ctx, u.ID, status, lines)
	if err != nil {
		if errors.Is(err, repository.ErrMenuItemNotFound) {
			return notFound(c, "menu item not found")
		}
		return internalError(c, "could not create order")
	}
	detail, err := h.Orders.GetByID(ctx, orderID)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusCreated, detail)
}

// Get handles GET /v1/orders/:identifier. A numeric identifier fetches
// one order, a known status lists orders in that status, and anything
// else is treated as a username.
func (h *OrderHandler) Get(c echo.Context) error {
	ident := c.Param("identifier")
	ctx := c.Request().Context()

	if id, ok := parseID(ident); ok {
		detail, err := h.Orders.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrOrderNotFound) {
				return notFound(c, "order not found")
			}
			return internalError(c, "db error")
		}
		return c.JSON(http.StatusOK, detail)
	}
	if model.ValidOrderStatus(ident) {
		orders, err := h.Orders.ListByStatus(ctx, ident)
		if err != nil {
			return internalError(c, "db error")
		}
		return c.JSON(http.StatusOK, orders)
	}
	u, err := h.Users.GetByName(ctx, ident)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return notFound(c, "user not found")
		}
		return internalError(c, "db error")
	}
	orders, err := h.Orders.ListByUser(ctx, u.ID)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, orders)
}

// Update handles PUT /v1/orders/:identifier. The status and any listed lines
// are updated; omitted parts are untouched.
func (h *OrderHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("identifier"))
	if !ok {
		return badRequest(c, "order id must be numeric")
	}
	var body struct {
		Status string          `json:"status"`
		Items  []orderLineBody `json:"order_items"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status != "" && !model.ValidOrderStatus(body.Status) {
		return badRequest(c, "invalid order status")
	}
	lines, msg := toCreateLines(body.Items)
	if msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Request().Context()
	if err := h.Orders.Update(ctx, id, body.Status, lines); err != nil {
		switch {
		case errors.Is(err, repository.ErrOrderNotFound):
			return notFound(c, "order not found")
		case errors.Is(err, repository.ErrMenuItemNotFound):
			return notFound(c, "menu item not found")
		}
		return internalError(c, "could not update order")
	}
	detail, err := h.Orders.GetByID(ctx, id)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, detail)
}

// Delete handles DELETE /v1/orders/:identifier.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("identifier"))
	if !ok {
		return badRequest(c, "order id must be numeric")
	}
	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return notFound(c, "order not found")
		}
		return internalError(c, "could not delete order")
	}
	return c.NoContent(http.StatusNoContent)
}
