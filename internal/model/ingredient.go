package model

// Ingredient is a raw ingredient (e.g. Tomato, Rice) measured in Unit
// (grams, ml, pieces).
type Ingredient struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

// UserIngredient tracks how much of an ingredient a user has at home.
type UserIngredient struct {
	ID           int64   `json:"id"`
	UserID       int64   `json:"user"`
	IngredientID int64   `json:"-"`
	Quantity     float64 `json:"quantity"`
}
