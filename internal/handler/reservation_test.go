package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/queue"
	"github.com/burgir/backoffice/internal/repository"
	"github.com/burgir/backoffice/internal/service"
)

// fakeReservationStore keeps reservations in memory and reproduces the
// repository's admission behavior: one mutex per table stands in for
// the row lock, so concurrent admissions serialize exactly like the
// SQL path.
type fakeReservationStore struct {
	mu     sync.Mutex
	locks  map[int64]*sync.Mutex
	tables map[int64]service.Bounds
	items  map[int64]*repository.ReservationDetail
	names  map[int64]string // user id -> name
	nextID int64
}

func newFakeStore() *fakeReservationStore {
	return &fakeReservationStore{
		locks:  map[int64]*sync.Mutex{},
		tables: map[int64]service.Bounds{},
		items:  map[int64]*repository.ReservationDetail{},
		names:  map[int64]string{},
		nextID: 1,
	}
}

func (s *fakeReservationStore) tableLock(tableID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[tableID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[tableID] = l
	}
	return l
}

func (s *fakeReservationStore) GetByID(_ context.Context, id int64) (*repository.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.items[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *fakeReservationStore) ListAll(_ context.Context) ([]repository.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.ReservationDetail, 0, len(s.items))
	for _, d := range s.items {
		out = append(out, *d)
	}
	return out, nil
}

func (s *fakeReservationStore) ListByUser(_ context.Context, userID int64) ([]repository.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]repository.ReservationDetail, 0)
	for _, d := range s.items {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (s *fakeReservationStore) admit(res *model.Reservation, now time.Time, excludeID int64) error {
	lock := s.tableLock(res.TableID)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	bounds, ok := s.tables[res.TableID]
	if !ok {
		s.mu.Unlock()
		return repository.ErrTableNotFound
	}
	var existing []service.Booking
	for _, d := range s.items {
		if d.TableID == res.TableID {
			existing = append(existing, service.Booking{
				ID: d.ID, StartTime: d.StartTime, Duration: d.Duration,
			})
		}
	}
	s.mu.Unlock()

	cand := service.Candidate{
		NumberOfPeople: res.NumberOfPeople,
		StartTime:      res.StartTime,
		Duration:       res.Duration,
	}
	if err := service.Validate(bounds, cand, existing, now, excludeID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if excludeID == 0 {
		res.ID = s.nextID
		s.nextID++
	} else if _, ok := s.items[res.ID]; !ok {
		return repository.ErrReservationNotFound
	}
	res.CreatedAt = now
	res.UpdatedAt = now
	s.items[res.ID] = &repository.ReservationDetail{
		Reservation: *res,
		UserName:    s.names[res.UserID],
	}
	return nil
}

func (s *fakeReservationStore) AdmitCreate(_ context.Context, res *model.Reservation, now time.Time) error {
	return s.admit(res, now, 0)
}

func (s *fakeReservationStore) AdmitUpdate(_ context.Context, res *model.Reservation, now time.Time) error {
	return s.admit(res, now, res.ID)
}

func (s *fakeReservationStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return repository.ErrReservationNotFound
	}
	delete(s.items, id)
	return nil
}

type fakeUserDirectory struct {
	byName map[string]*model.User
}

func (d *fakeUserDirectory) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range d.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (d *fakeUserDirectory) GetByName(_ context.Context, name string) (*model.User, error) {
	u, ok := d.byName[name]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationConfirmedEvent
}

func (p *recordingPublisher) PublishReservationConfirmed(_ context.Context, ev queue.ReservationConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

var testNow = time.Date(2030, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestHandler() (*ReservationHandler, *fakeReservationStore) {
	store := newFakeStore()
	store.tables[1] = service.Bounds{MinPeople: 2, MaxPeople: 6}
	store.names[1] = "alice"
	users := &fakeUserDirectory{byName: map[string]*model.User{
		"alice": {ID: 1, Name: "alice"},
		"bob":   {ID: 2, Name: "bob"},
	}}
	store.names[2] = "bob"
	h := NewReservationHandler(store, users, nil)
	h.Now = func() time.Time { return testNow }
	return h, store
}

func doRequest(h echo.HandlerFunc, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for k, v := range params {
		c.SetParamNames(k)
		c.SetParamValues(v)
	}
	_ = h(c)
	return rec
}

func createBody(overrides map[string]any) string {
	m := map[string]any{
		"reserver":         "alice",
		"table":            1,
		"number_of_people": 4,
		"date_and_time":    "2030-06-15 18:00:00",
		"duration":         "02:00:00",
	}
	for k, v := range overrides {
		if v == nil {
			delete(m, k)
		} else {
			m[k] = v
		}
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func TestReservationCreate(t *testing.T) {
	h, _ := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice", got["reserver"])
	assert.Equal(t, "2030-06-15T18:00:00Z", got["date_and_time"])
	assert.Equal(t, "02:00:00", got["duration"])
	assert.NotEmpty(t, got["confirmation_code"])
}

func TestReservationCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantCode  int
	}{
		{"missing reserver", map[string]any{"reserver": nil}, http.StatusBadRequest},
		{"missing table", map[string]any{"table": nil}, http.StatusBadRequest},
		{"missing people", map[string]any{"number_of_people": nil}, http.StatusBadRequest},
		{"missing date", map[string]any{"date_and_time": nil}, http.StatusBadRequest},
		{"missing duration", map[string]any{"duration": nil}, http.StatusBadRequest},
		{"bad date format", map[string]any{"date_and_time": "15.06.2030 18h"}, http.StatusBadRequest},
		{"bad duration format", map[string]any{"duration": "two hours"}, http.StatusBadRequest},
		{"unknown reserver", map[string]any{"reserver": "nobody"}, http.StatusNotFound},
		{"unknown table", map[string]any{"table": 99}, http.StatusNotFound},
		{"too few people", map[string]any{"number_of_people": 1}, http.StatusBadRequest},
		{"too many people", map[string]any{"number_of_people": 7}, http.StatusBadRequest},
		{"in the past", map[string]any{"date_and_time": "2030-06-15 11:00:00"}, http.StatusBadRequest},
		{"wrongly typed people", map[string]any{"number_of_people": "many"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler()
			rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(tt.overrides), nil)
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
		})
	}
}

func TestReservationCreateOverlap(t *testing.T) {
	h, _ := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Same slot again collides.
	rec = doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(map[string]any{"reserver": "bob"}), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Starting exactly when the first ends is fine.
	rec = doRequest(h.Create, http.MethodPost, "/v1/reservations",
		createBody(map[string]any{"date_and_time": "2030-06-15 20:00:00"}), nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestReservationCreateStartingNow(t *testing.T) {
	h, _ := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations",
		createBody(map[string]any{"date_and_time": "2030-06-15 12:00:00"}), nil)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestReservationConcurrentDoubleBook(t *testing.T) {
	h, store := newTestHandler()

	const attempts = 8
	codes := make(chan int, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
			codes <- rec.Code
		}()
	}
	wg.Wait()
	close(codes)

	created := 0
	for code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusBadRequest, code)
		}
	}
	assert.Equal(t, 1, created, "exactly one admission may win the slot")
	assert.Len(t, store.items, 1)
}

func TestReservationUpdateMergesFields(t *testing.T) {
	h, store := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Move only the start; everything else keeps its stored value.
	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/1",
		`{"date_and_time": "2030-06-15 21:00:00"}`, map[string]string{"identifier": "1"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := store.items[1]
	assert.Equal(t, time.Date(2030, 6, 15, 21, 0, 0, 0, time.UTC), stored.StartTime)
	assert.Equal(t, 4, stored.NumberOfPeople)
	assert.Equal(t, 2*time.Hour, stored.Duration)

	// Re-admitting over its own slot is idempotent.
	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/1",
		`{"number_of_people": 5}`, map[string]string{"identifier": "1"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 5, store.items[1].NumberOfPeople)
}

func TestReservationUpdateErrors(t *testing.T) {
	h, _ := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doRequest(h.Create, http.MethodPost, "/v1/reservations",
		createBody(map[string]any{"date_and_time": "2030-06-15 21:00:00"}), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Moving the second onto the first collides.
	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/2",
		`{"date_and_time": "2030-06-15 19:00:00"}`, map[string]string{"identifier": "2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/42",
		`{"number_of_people": 3}`, map[string]string{"identifier": "42"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/abc",
		`{"number_of_people": 3}`, map[string]string{"identifier": "abc"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(h.Update, http.MethodPut, "/v1/reservations/1",
		`{"number_of_people": "many"}`, map[string]string{"identifier": "1"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestReservationGetDispatch(t *testing.T) {
	h, store := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Past and current rows cannot be created through admission; seed
	// them straight into the store. At 12:00 the 08:00 booking has
	// ended and the 11:00 one is in progress.
	for id, dt := range map[int64]time.Time{
		101: time.Date(2030, 6, 15, 8, 0, 0, 0, time.UTC),
		102: time.Date(2030, 6, 15, 11, 0, 0, 0, time.UTC),
	} {
		store.items[id] = &repository.ReservationDetail{
			Reservation: model.Reservation{
				ID: id, UserID: 1, TableID: 1, NumberOfPeople: 4,
				StartTime: dt, Duration: 2 * time.Hour,
			},
			UserName: "alice",
		}
	}

	count := func(ident string) int {
		rec := doRequest(h.Get, http.MethodGet, "/v1/reservations/"+ident, "", map[string]string{"identifier": ident})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		return len(list)
	}
	assert.Equal(t, 1, count("past"))
	assert.Equal(t, 1, count("current"))
	assert.Equal(t, 1, count("upcoming"))
	assert.Equal(t, 3, count("alice"), "username lists all of the user's reservations")

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/102", "", map[string]string{"identifier": "102"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/999", "", map[string]string{"identifier": "999"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h.Get, http.MethodGet, "/v1/reservations/nobody", "", map[string]string{"identifier": "nobody"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReservationDelete(t *testing.T) {
	h, store := newTestHandler()
	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(h.Delete, http.MethodDelete, "/v1/reservations/1", "", map[string]string{"identifier": "1"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, store.items)

	rec = doRequest(h.Delete, http.MethodDelete, "/v1/reservations/1", "", map[string]string{"identifier": "1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReservationPublishesEvent(t *testing.T) {
	h, _ := newTestHandler()
	pub := &recordingPublisher{}
	h.Events = pub

	rec := doRequest(h.Create, http.MethodPost, "/v1/reservations", createBody(nil), nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// The publish hop is async.
	require.Eventually(t, func() bool {
		pub.mu.Lock()
		defer pub.mu.Unlock()
		return len(pub.events) == 1
	}, time.Second, 5*time.Millisecond)

	pub.mu.Lock()
	defer pub.mu.Unlock()
	ev := pub.events[0]
	assert.Equal(t, "alice", ev.UserName)
	assert.Equal(t, int64(1), ev.TableID)
	assert.Equal(t, "2030-06-15T18:00:00Z", ev.StartsAt)
	assert.Equal(t, "2030-06-15T20:00:00Z", ev.EndsAt)
	assert.NotEmpty(t, ev.ConfirmationCode)
}
