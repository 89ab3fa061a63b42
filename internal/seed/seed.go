// Package seed fills the database with demo data for local
// development and demos.
package seed

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/repository"
)

var menuTypes = []string{"main course", "drink", "appetizer", "snack", "dessert"}

var durations = []time.Duration{
	30 * time.Minute, time.Hour, 90 * time.Minute,
	2 * time.Hour, 150 * time.Minute, 3 * time.Hour,
}

// Seeder creates demo users, tables, menu items, orders and
// reservations. Reservations go through the regular admission path, so
// seeded data never contains an overlap.
type Seeder struct {
	Users        *repository.UserRepo
	Tables       *repository.TableRepo
	Menu         *repository.MenuRepo
	Orders       *repository.OrderRepo
	Reservations *repository.ReservationRepo
	Logger       *zap.Logger
}

// Result counts what one Run created.
type Result struct {
	Users        int `json:"users"`
	Tables       int `json:"tables"`
	MenuItems    int `json:"menu_items"`
	Orders       int `json:"orders"`
	Reservations int `json:"reservations"`
}

// Run creates roughly n of each entity. Name collisions with earlier
// runs and rejected reservations are skipped, not treated as errors.
func (s *Seeder) Run(ctx context.Context, n int) (*Result, error) {
	if n < 1 {
		n = 10
	}
	res := &Result{}
	if err := s.seedUsers(ctx, n, res); err != nil {
		return nil, err
	}
	if err := s.seedTables(ctx, n, res); err != nil {
		return nil, err
	}
	if err := s.seedMenu(ctx, n, res); err != nil {
		return nil, err
	}
	if err := s.seedOrders(ctx, n, res); err != nil {
		return nil, err
	}
	if err := s.seedReservations(ctx, n, res); err != nil {
		return nil, err
	}
	s.Logger.Info("seed complete",
		zap.Int("users", res.Users), zap.Int("tables", res.Tables),
		zap.Int("menu_items", res.MenuItems), zap.Int("orders", res.Orders),
		zap.Int("reservations", res.Reservations))
	return res, nil
}

func (s *Seeder) seedUsers(ctx context.Context, n int, res *Result) error {
	// Probe upward from User0 so repeated runs keep extending the
	// numbering instead of colliding.
	next := 0
	for created := 0; created < n; {
		u := &model.User{Name: fmt.Sprintf("User%d", next)}
		next++
		err := s.Users.Create(ctx, u)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return err
		}
		created++
		res.Users++
	}
	return nil
}

func (s *Seeder) seedTables(ctx context.Context, n int, res *Result) error {
	for i := 0; i < n; i++ {
		min := 1 + rand.Intn(4)
		t := &model.Table{MinPeople: min, MaxPeople: min + 1 + rand.Intn(6)}
		if err := s.Tables.Create(ctx, t); err != nil {
			return err
		}
		res.Tables++
	}
	return nil
}

func (s *Seeder) seedMenu(ctx context.Context, n int, res *Result) error {
	// Numbered per type; collisions from earlier runs are skipped.
	counters := map[string]int{}
	for created := 0; created < n; {
		t := menuTypes[rand.Intn(len(menuTypes))]
		counters[t]++
		m := &model.MenuItem{
			Name:        fmt.Sprintf("%s %d", t, counters[t]),
			Description: fmt.Sprintf("Description for %s %d", t, counters[t]),
			Type:        t,
			Price:       5 + float64(rand.Intn(3000))/100,
		}
		err := s.Menu.Create(ctx, m)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return err
		}
		created++
		res.MenuItems++
	}
	return nil
}

func (s *Seeder) seedOrders(ctx context.Context, n int, res *Result) error {
	users, err := s.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	menu, err := s.Menu.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 || len(menu) == 0 {
		return nil
	}
	for i := 0; i < n; i++ {
		u := users[rand.Intn(len(users))]
		status := model.OrderStatuses[rand.Intn(len(model.OrderStatuses))]
		item := menu[rand.Intn(len(menu))]
		lines := []repository.CreateLine{{MenuItemID: item.ID, Amount: 1 + rand.Intn(4)}}
		if _, err := s.Orders.Create(ctx, u.ID, status, lines); err != nil {
			return err
		}
		res.Orders++
	}
	return nil
}

func (s *Seeder) seedReservations(ctx context.Context, n int, res *Result) error {
	users, err := s.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	tables, err := s.Tables.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 || len(tables) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		t := tables[rand.Intn(len(tables))]
		start := now.Truncate(time.Second).
			AddDate(0, 0, 1+rand.Intn(90)).
			Add(time.Duration(8+rand.Intn(14)) * time.Hour)
		r := &model.Reservation{
			UserID:           users[rand.Intn(len(users))].ID,
			TableID:          t.ID,
			NumberOfPeople:   t.MinPeople + rand.Intn(t.MaxPeople-t.MinPeople+1),
			StartTime:        start,
			Duration:         durations[rand.Intn(len(durations))],
			ConfirmationCode: uuid.NewString(),
		}
		if err := s.Reservations.AdmitCreate(ctx, r, now); err != nil {
			// Overlaps simply mean the slot was taken by an earlier pick.
			s.Logger.Debug("seed reservation rejected", zap.Error(err))
			continue
		}
		res.Reservations++
	}
	return nil
}
