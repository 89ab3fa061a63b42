package model

import "time"

// Order statuses. There is no guarded transition rule between them;
// kitchen staff move an order freely through the set.
const (
	OrderStatusPending    = "pending"
	OrderStatusRegistered = "registered"
	OrderStatusPreparing  = "preparing"
	OrderStatusReady      = "ready"
	OrderStatusCancelled  = "cancelled"
)

// OrderStatuses lists every known status.
var OrderStatuses = []string{
	OrderStatusPending, OrderStatusRegistered, OrderStatusPreparing,
	OrderStatusReady, OrderStatusCancelled,
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusRegistered, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a food order placed by a user. Its items live in OrderItem
// rows keyed by (order, menu item).
type Order struct {
	ID        int64
	UserID    int64
	Status    string
	CreatedAt time.Time
}

// OrderItem links an order to a menu item with a quantity.
type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Amount     int
}
