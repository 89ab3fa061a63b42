package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/burgir/backoffice/internal/model"
	"github.com/burgir/backoffice/internal/service"
)

// ErrReservationNotFound is returned when a reservation lookup fails.
var ErrReservationNotFound = errors.New("reservation not found")

// ReservationRepo provides CRUD operations for reservations and runs
// the admission check inside the store's serialization point. Admission
// is a classic check-then-act sequence, so AdmitCreate and AdmitUpdate
// take a FOR UPDATE row lock on the target table before reading the
// existing bookings; two concurrent admissions for the same table
// therefore serialize and cannot both observe "no overlap".
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationDetail is a reservation joined with its owner's name, the
// shape the HTTP layer serializes.
type ReservationDetail struct {
	model.Reservation
	UserName string
}

const detailColumns = `r.id, r.user_id, r.table_id, r.number_of_people, r.start_time,
                       r.duration_seconds, r.confirmation_code, r.created_at, r.updated_at, u.name`

func scanDetail(row interface{ Scan(dest ...any) error }) (*ReservationDetail, error) {
	var d ReservationDetail
	var durSecs int64
	err := row.Scan(&d.ID, &d.UserID, &d.TableID, &d.NumberOfPeople, &d.StartTime,
		&durSecs, &d.ConfirmationCode, &d.CreatedAt, &d.UpdatedAt, &d.UserName)
	if err != nil {
		return nil, err
	}
	d.Duration = time.Duration(durSecs) * time.Second
	d.StartTime = d.StartTime.UTC()
	return &d, nil
}

// GetByID fetches a single reservation with its owner's name.
func (r *ReservationRepo) GetByID(ctx context.Context, id int64) (*ReservationDetail, error) {
	const q = `SELECT ` + detailColumns + `
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.id = ?`
	d, err := scanDetail(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListAll returns every reservation ordered by start time.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	const q = `SELECT ` + detailColumns + `
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           ORDER BY r.start_time`
	return r.list(ctx, q)
}

// ListByUser returns every reservation made by the given user.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID int64) ([]ReservationDetail, error) {
	const q = `SELECT ` + detailColumns + `
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           WHERE r.user_id = ?
	           ORDER BY r.start_time`
	return r.list(ctx, q, userID)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]ReservationDetail, 0)
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// AdmitCreate validates res against the table's bounds and current
// bookings and, when admission passes, inserts it — all within one
// transaction holding the table's row lock. Validation failures come
// back as the service package's sentinel errors; a missing table is
// ErrTableNotFound. On success the generated ID and timestamps are
// populated on res.
func (r *ReservationRepo) AdmitCreate(ctx context.Context, res *model.Reservation, now time.Time) error {
	return r.admit(ctx, res, now, 0)
}

// AdmitUpdate re-validates an already-merged reservation (res.ID set)
// against the other bookings on its table, excluding itself from the
// overlap scan, and persists the new values when admission passes.
func (r *ReservationRepo) AdmitUpdate(ctx context.Context, res *model.Reservation, now time.Time) error {
	if res.ID == 0 {
		return ErrReservationNotFound
	}
	return r.admit(ctx, res, now, res.ID)
}

func (r *ReservationRepo) admit(ctx context.Context, res *model.Reservation, now time.Time, excludeID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	bounds, err := lockTableTx(ctx, tx, res.TableID)
	if err != nil {
		return err
	}
	existing, err := bookingsByTableTx(ctx, tx, res.TableID)
	if err != nil {
		return err
	}
	cand := service.Candidate{
		NumberOfPeople: res.NumberOfPeople,
		StartTime:      res.StartTime,
		Duration:       res.Duration,
	}
	if err := service.Validate(bounds, cand, existing, now, excludeID); err != nil {
		return err
	}

	if excludeID == 0 {
		const ins = `INSERT INTO reservations
		             (user_id, table_id, number_of_people, start_time, duration_seconds, confirmation_code)
		             VALUES (?, ?, ?, ?, ?, ?)`
		result, err := tx.ExecContext(ctx, ins, res.UserID, res.TableID, res.NumberOfPeople,
			res.StartTime.UTC(), int64(res.Duration/time.Second), res.ConfirmationCode)
		if err != nil {
			return err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		res.ID = id
	} else {
		const upd = `UPDATE reservations
		             SET number_of_people = ?, start_time = ?, duration_seconds = ?
		             WHERE id = ?`
		result, err := tx.ExecContext(ctx, upd, res.NumberOfPeople,
			res.StartTime.UTC(), int64(res.Duration/time.Second), res.ID)
		if err != nil {
			return err
		}
		if n, _ := result.RowsAffected(); n == 0 {
			// Row may match its previous values; confirm it exists.
			var one int
			if err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM reservations WHERE id = ?`, res.ID).Scan(&one); err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return ErrReservationNotFound
				}
				return err
			}
		}
	}

	// Query back timestamps so callers can serialize the stored row.
	if err := tx.QueryRowContext(ctx,
		`SELECT created_at, updated_at FROM reservations WHERE id = ?`, res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// lockTableTx reads a table's occupancy bounds under a FOR UPDATE lock,
// pinning the table's bookings for the rest of the transaction.
func lockTableTx(ctx context.Context, tx *sql.Tx, tableID int64) (service.Bounds, error) {
	var b service.Bounds
	err := tx.QueryRowContext(ctx,
		`SELECT min_people, max_people FROM restaurant_tables WHERE id = ? FOR UPDATE`,
		tableID).Scan(&b.MinPeople, &b.MaxPeople)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return b, ErrTableNotFound
		}
		return b, err
	}
	return b, nil
}

// bookingsByTableTx returns the intervals of every reservation on the
// table within the transaction's snapshot.
func bookingsByTableTx(ctx context.Context, tx *sql.Tx, tableID int64) ([]service.Booking, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, start_time, duration_seconds FROM reservations WHERE table_id = ?`, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []service.Booking
	for rows.Next() {
		var b service.Booking
		var durSecs int64
		if err := rows.Scan(&b.ID, &b.StartTime, &durSecs); err != nil {
			return nil, err
		}
		b.StartTime = b.StartTime.UTC()
		b.Duration = time.Duration(durSecs) * time.Second
		out = append(out, b)
	}
	return out, rows.Err()
}

// Delete removes a reservation by ID. No cascading validation is
// needed; the booking simply stops existing.
func (r *ReservationRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrReservationNotFound
	}
	return nil
}
