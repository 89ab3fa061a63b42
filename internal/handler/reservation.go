package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/queue"
	"github.com/burgir/backoffice/internal/repository"
	"github.com/burgir/backoffice/internal/service"
)

// ReservationStore is the slice of the reservation repository the
// handler needs. Admission runs inside the store so the handler never
// sees a torn check-then-act.
type ReservationStore interface {
	GetByID(ctx context.Context, id int64) (*repository.ReservationDetail, error)
	ListAll(ctx context.Context) ([]repository.ReservationDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]repository.ReservationDetail, error)
	AdmitCreate(ctx context.Context, res *model.Reservation, now time.Time) error
	AdmitUpdate(ctx context.Context, res *model.Reservation, now time.Time) error
	Delete(ctx context.Context, id int64) error
}

// UserDirectory resolves reservation owners by name or ID.
type UserDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByName(ctx context.Context, name string) (*model.User, error)
}

// EventPublisher emits confirmation events after a successful commit.
type EventPublisher interface {
	PublishReservationConfirmed(ctx context.Context, event queue.ReservationConfirmedEvent) error
}

// ReservationHandler serves the reservation endpoints. Its clock is a
// field so tests can pin "now".
type ReservationHandler struct {
	Store  ReservationStore
	Users  UserDirectory
	Events EventPublisher
	Now    func() time.Time
}

// NewReservationHandler wires the handler with the real clock. events
// may be nil when no broker is configured.
func NewReservationHandler(store ReservationStore, users UserDirectory, events EventPublisher) *ReservationHandler {
	return &ReservationHandler{
		Store:  store,
		Users:  users,
		Events: events,
		Now:    func() time.Time { return time.Now().UTC() },
	}
}

// reservationBody is the wire shape of create and update requests.
// Pointer and raw fields distinguish absent from zero: an update only
// touches the fields that are present, and number_of_people keeps its
// raw JSON so a wrongly typed value is detected as such rather than
// silently failing to bind.
type reservationBody struct {
	Reserver       *string          `json:"reserver"`
	Table          *int64           `json:"table"`
	NumberOfPeople *json.RawMessage `json:"number_of_people"`
	DateAndTime    *string          `json:"date_and_time"`
	Duration       *string          `json:"duration"`
}

func serializeReservation(d *repository.ReservationDetail) echo.Map {
	return echo.Map{
		"id":                d.ID,
		"reserver":          d.UserName,
		"table":             d.TableID,
		"number_of_people":  d.NumberOfPeople,
		"date_and_time":     d.StartTime.UTC().Format(time.RFC3339),
		"duration":          service.FormatDuration(d.Duration),
		"confirmation_code": d.ConfirmationCode,
		"created_at":        d.CreatedAt.UTC().Format(time.RFC3339),
		"updated_at":        d.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// admissionStatus maps an admission or lookup error to an HTTP
// response, or returns false when the error is not one of ours.
func admissionStatus(c echo.Context, err error) (error, bool) {
	switch {
	case errors.Is(err, service.ErrTypeCoercion):
		return internalError(c, err.Error()), true
	case errors.Is(err, service.ErrBadFormat),
		errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrTooFewPeople),
		errors.Is(err, service.ErrTooManyPeople),
		errors.Is(err, service.ErrInPast),
		errors.Is(err, service.ErrOverlap):
		return badRequest(c, err.Error()), true
	case errors.Is(err, repository.ErrTableNotFound):
		return notFound(c, "table not found"), true
	case errors.Is(err, repository.ErrUserNotFound):
		return notFound(c, "user not found"), true
	case errors.Is(err, repository.ErrReservationNotFound):
		return notFound(c, "reservation not found"), true
	}
	return nil, false
}

// List handles GET /v1/reservations.
func (h *ReservationHandler) List(c echo.Context) error {
	details, err := h.Store.ListAll(c.Request().Context())
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, serializeAll(details))
}

func serializeAll(details []repository.ReservationDetail) []echo.Map {
	out := make([]echo.Map, 0, len(details))
	for i := range details {
		out = append(out, serializeReservation(&details[i]))
	}
	return out
}

// Create handles POST /v1/reservations. Every field is required; the
// admission check and the insert run atomically in the store.
func (h *ReservationHandler) Create(c echo.Context) error {
	var body reservationBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	for _, f := range []struct {
		name string
		ok   bool
	}{
		{"reserver", body.Reserver != nil && *body.Reserver != ""},
		{"table", body.Table != nil},
		{"number_of_people", body.NumberOfPeople != nil},
		{"date_and_time", body.DateAndTime != nil && *body.DateAndTime != ""},
		{"duration", body.Duration != nil && *body.Duration != ""},
	} {
		if !f.ok {
			return badRequest(c, f.name+" is required")
		}
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByName(ctx, *body.Reserver)
	if err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "db error")
	}
	people, err := service.CoerceInt(*body.NumberOfPeople)
	if err != nil {
		resp, _ := admissionStatus(c, err)
		return resp
	}
	start, err := service.ParseStartTime(*body.DateAndTime)
	if err != nil {
		resp, _ := admissionStatus(c, err)
		return resp
	}
	dur, err := service.ParseDuration(*body.Duration)
	if err != nil {
		resp, _ := admissionStatus(c, err)
		return resp
	}

	res := &model.Reservation{
		UserID:           u.ID,
		TableID:          *body.Table,
		NumberOfPeople:   people,
		StartTime:        start,
		Duration:         dur,
		ConfirmationCode: uuid.NewString(),
	}
	now := h.Now()
	if err := h.Store.AdmitCreate(ctx, res, now); err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "could not create reservation")
	}

	h.publishConfirmed(res, u.Name, now)

	detail := &repository.ReservationDetail{Reservation: *res, UserName: u.Name}
	return c.JSON(http.StatusCreated, serializeReservation(detail))
}

// publishConfirmed emits the confirmation event off the request path.
// Failures are swallowed; the reservation is already committed.
func (h *ReservationHandler) publishConfirmed(res *model.Reservation, userName string, now time.Time) {
	if h.Events == nil {
		return
	}
	ev := queue.ReservationConfirmedEvent{
		ReservationID:    res.ID,
		UserName:         userName,
		TableID:          res.TableID,
		NumberOfPeople:   res.NumberOfPeople,
		StartsAt:         res.StartTime.UTC().Format(time.RFC3339),
		EndsAt:           res.EndTime().UTC().Format(time.RFC3339),
		ConfirmationCode: res.ConfirmationCode,
		ConfirmedAt:      now.Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.Events.PublishReservationConfirmed(ctx, ev)
	}()
}

// Get handles GET /v1/reservations/:identifier. A numeric identifier
// fetches one reservation; "upcoming", "current" or "past" filter all
// reservations against the clock; anything else is a username.
func (h *ReservationHandler) Get(c echo.Context) error {
	ident := c.Param("identifier")
	ctx := c.Request().Context()

	if id, ok := parseID(ident); ok {
		detail, err := h.Store.GetByID(ctx, id)
		if err != nil {
			if resp, ok := admissionStatus(c, err); ok {
				return resp
			}
			return internalError(c, "db error")
		}
		return c.JSON(http.StatusOK, serializeReservation(detail))
	}

	switch ident {
	case "upcoming", "current", "past":
		details, err := h.Store.ListAll(ctx)
		if err != nil {
			return internalError(c, "db error")
		}
		return c.JSON(http.StatusOK, serializeAll(filterByTime(details, ident, h.Now())))
	}

	u, err := h.Users.GetByName(ctx, ident)
	if err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "db error")
	}
	details, err := h.Store.ListByUser(ctx, u.ID)
	if err != nil {
		return internalError(c, "db error")
	}
	return c.JSON(http.StatusOK, serializeAll(details))
}

// filterByTime partitions reservations relative to now: upcoming start
// later, past have ended, current contain now (end exclusive).
func filterByTime(details []repository.ReservationDetail, status string, now time.Time) []repository.ReservationDetail {
	out := make([]repository.ReservationDetail, 0)
	for _, d := range details {
		start, end := d.StartTime, d.EndTime()
		switch status {
		case "upcoming":
			if start.After(now) {
				out = append(out, d)
			}
		case "past":
			if !end.After(now) {
				out = append(out, d)
			}
		case "current":
			if !start.After(now) && end.After(now) {
				out = append(out, d)
			}
		}
	}
	return out
}

// Update handles PUT /v1/reservations/:identifier. The stored reservation is
// merged with the fields present in the body and the merged candidate
// is re-admitted, excluding itself from the overlap scan.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, ok := parseID(c.Param("identifier"))
	if !ok {
		return badRequest(c, "reservation id must be numeric")
	}
	var body reservationBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	ctx := c.Request().Context()
	stored, err := h.Store.GetByID(ctx, id)
	if err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "db error")
	}

	merged := stored.Reservation
	userName := stored.UserName
	if body.Reserver != nil && *body.Reserver != "" {
		u, err := h.Users.GetByName(ctx, *body.Reserver)
		if err != nil {
			if resp, ok := admissionStatus(c, err); ok {
				return resp
			}
			return internalError(c, "db error")
		}
		merged.UserID = u.ID
		userName = u.Name
	}
	if body.Table != nil {
		merged.TableID = *body.Table
	}
	if body.NumberOfPeople != nil {
		people, err := service.CoerceInt(*body.NumberOfPeople)
		if err != nil {
			resp, _ := admissionStatus(c, err)
			return resp
		}
		merged.NumberOfPeople = people
	}
	if body.DateAndTime != nil {
		start, err := service.ParseStartTime(*body.DateAndTime)
		if err != nil {
			resp, _ := admissionStatus(c, err)
			return resp
		}
		merged.StartTime = start
	}
	if body.Duration != nil {
		dur, err := service.ParseDuration(*body.Duration)
		if err != nil {
			resp, _ := admissionStatus(c, err)
			return resp
		}
		merged.Duration = dur
	}

	if err := h.Store.AdmitUpdate(ctx, &merged, h.Now()); err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "could not update reservation")
	}
	detail := &repository.ReservationDetail{Reservation: merged, UserName: userName}
	return c.JSON(http.StatusOK, serializeReservation(detail))
}

// Delete handles DELETE /v1/reservations/:identifier.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, ok := parseID(c.Param("identifier"))
	if !ok {
		return badRequest(c, "reservation id must be numeric")
	}
	if err := h.Store.Delete(c.Request().Context(), id); err != nil {
		if resp, ok := admissionStatus(c, err); ok {
			return resp
		}
		return internalError(c, "could not delete reservation")
	}
	return c.NoContent(http.StatusNoContent)
}
