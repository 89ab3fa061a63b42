package model

// FoodItem is a recipe composed of ingredients with quantities.
type FoodItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// FoodItemIngredient links a food item to one ingredient and the
// quantity required, expressed in the ingredient's unit. Quantity must
// be positive.
type FoodItemIngredient struct {
	ID           int64   `json:"id"`
	FoodItemID   int64   `json:"food_item"`
	IngredientID int64   `json:"-"`
	Quantity     float64 `json:"quantity"`
}
