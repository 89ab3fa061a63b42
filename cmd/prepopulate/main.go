// Command prepopulate fills the database with demo data from the
// command line: prepopulate [-n count].
package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/burgir/backoffice/internal/config"
	"github.com/burgir/backoffice/internal/database"
	"github.com/burgir/backoffice/internal/logging"
	"github.com/burgir/backoffice/internal/repository"
	"github.com/burgir/backoffice/internal/seed"
)

func main() {
	n := flag.Int("n", 10, "how many of each entity to create")
	flag.Parse()

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

	s := &seed.Seeder{
		Users:        repository.NewUserRepo(db),
		Tables:       repository.NewTableRepo(db),
		Menu:         repository.NewMenuRepo(db),
		Orders:       repository.NewOrderRepo(db),
		Reservations: repository.NewReservationRepo(db),
		Logger:       logger,
	}
	if _, err := s.Run(context.Background(), *n); err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
}
