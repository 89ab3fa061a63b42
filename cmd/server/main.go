package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/burgir/backoffice/internal/config"
	"github.com/burgir/backoffice/internal/database"
	"github.com/burgir/backoffice/internal/handler"
	"github.com/burgir/backoffice/internal/logging"
	"github.com/burgir/backoffice/internal/queue"
	"github.com/burgir/backoffice/internal/repository"
	"github.com/burgir/backoffice/internal/router"
	"github.com/burgir/backoffice/internal/seed"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unreachable, caching and rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	tables := repository.NewTableRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	reservations := repository.NewReservationRepo(db)
	ingredients := repository.NewIngredientRepo(db)
	foodItems := repository.NewFoodItemRepo(db)
	mealPlans := repository.NewMealPlanRepo(db)
	pantry := repository.NewPantryRepo(db)
	staff := repository.NewStaffRepo(db)
	stats := repository.NewStatsRepo(db)

	publisher := queue.NewPublisher(cfg.AMQPURL, logger)
	go queue.StartReservationConsumer(cfg.AMQPURL, logger)

	seeder := &seed.Seeder{
		Users:        users,
		Tables:       tables,
		Menu:         menu,
		Orders:       orders,
		Reservations: reservations,
		Logger:       logger,
	}

	h := router.Handlers{
		Users:        handler.NewUserHandler(users),
		Tables:       handler.NewTableHandler(tables),
		Menu:         handler.NewMenuHandler(menu),
		Orders:       handler.NewOrderHandler(orders, users),
		Reservations: handler.NewReservationHandler(reservations, users, publisher),
		Ingredients:  handler.NewIngredientHandler(ingredients),
		FoodItems:    handler.NewFoodItemHandler(foodItems),
		MealPlans:    handler.NewMealPlanHandler(mealPlans, foodItems),
		Pantry:       handler.NewPantryHandler(pantry, users),
		Auth:         handler.NewAuthHandler(staff, cfg.JWTSecret, cfg.AccessTTLMin, cfg.BcryptCost),
		Admin:        handler.NewAdminHandler(stats, seeder),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.Register(e, h, cfg.JWTSecret, rdb)

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
