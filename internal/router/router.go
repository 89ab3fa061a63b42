// Package router wires HTTP routes to handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/burgir/backoffice/internal/config"
	"github.com/burgir/backoffice/internal/handler"
	"github.com/burgir/backoffice/internal/middleware"
)

// Handlers bundles every handler the router mounts.
type Handlers struct {
	Users        *handler.UserHandler
	Tables       *handler.TableHandler
	Menu         *handler.MenuHandler
	Orders       *handler.OrderHandler
	Reservations *handler.ReservationHandler
	Ingredients  *handler.IngredientHandler
	FoodItems    *handler.FoodItemHandler
	MealPlans    *handler.MealPlanHandler
	Pantry       *handler.PantryHandler
	Auth         *handler.AuthHandler
	Admin        *handler.AdminHandler
}

// Register mounts every route. Read endpoints get the Redis response
// cache; the whole /v1 surface gets the token-bucket rate limiter; the
// admin group additionally requires a staff token. rdb may be nil, in
// which case cache and rate limiting become no-ops.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cached := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Guests.
	v1.GET("/users", h.Users.List, cached)
	v1.POST("/users", h.Users.Create)
	v1.GET("/users/:identifier", h.Users.Get, cached)
	v1.DELETE("/users/:identifier", h.Users.Delete)

	// Pantry, nested under a user.
	v1.GET("/users/:identifier/ingredients", h.Pantry.List)
	v1.PUT("/users/:identifier/ingredients/:ingredientID", h.Pantry.Set)
	v1.DELETE("/users/:identifier/ingredients/:ingredientID", h.Pantry.Remove)
	v1.GET("/users/:identifier/shopping-list/:foodItemID", h.Pantry.ShoppingList)

	// Tables.
	v1.GET("/tables", h.Tables.List, cached)
	v1.POST("/tables", h.Tables.Create)

	// Menu.
	v1.GET("/menu", h.Menu.List, cached)
	v1.POST("/menu", h.Menu.Create)
	v1.GET("/menu/:type", h.Menu.ListByType, cached)

	// Orders.
	v1.GET("/orders", h.Orders.List)
	v1.POST("/orders", h.Orders.Create)
	v1.GET("/orders/:identifier", h.Orders.Get)
	v1.PUT("/orders/:identifier", h.Orders.Update)
	v1.DELETE("/orders/:identifier", h.Orders.Delete)

	// Reservations. Reads stay uncached: the upcoming/current/past
	// views depend on the clock and staleness here shows overlapping
	// slots as free.
	v1.GET("/reservations", h.Reservations.List)
	v1.POST("/reservations", h.Reservations.Create)
	v1.GET("/reservations/:identifier", h.Reservations.Get)
	v1.PUT("/reservations/:identifier", h.Reservations.Update)
	v1.DELETE("/reservations/:identifier", h.Reservations.Delete)

	// Meal planning.
	v1.GET("/ingredients", h.Ingredients.List, cached)
	v1.POST("/ingredients", h.Ingredients.Create)
	v1.GET("/ingredients/:id", h.Ingredients.Get, cached)
	v1.PUT("/ingredients/:id", h.Ingredients.Update)
	v1.DELETE("/ingredients/:id", h.Ingredients.Delete)

	v1.GET("/food-items", h.FoodItems.List, cached)
	v1.POST("/food-items", h.FoodItems.Create)
	v1.GET("/food-items/:id", h.FoodItems.Get, cached)
	v1.PUT("/food-items/:id", h.FoodItems.Update)
	v1.DELETE("/food-items/:id", h.FoodItems.Delete)
	v1.DELETE("/food-items/:id/ingredients/:ingredientID", h.FoodItems.RemoveIngredient)

	v1.GET("/weekly-plans", h.MealPlans.List)
	v1.POST("/weekly-plans", h.MealPlans.Create)
	v1.GET("/weekly-plans/:id", h.MealPlans.Get)
	v1.PUT("/weekly-plans/:id/days/:day", h.MealPlans.SetDay)
	v1.DELETE("/weekly-plans/:id", h.MealPlans.Delete)

	// Staff auth.
	authGroup := e.Group("/v1/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)

	// Admin surface, staff only.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(handler.RoleStaff))
	admin.GET("/overview", h.Admin.Overview)
	admin.POST("/seed", h.Admin.Seed)
}
