package model

// MenuItem is a single orderable item on the restaurant menu. Type
// groups items for display (e.g. "main course", "drink", "dessert").
type MenuItem struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
}
