// Package service holds the reservation admission controller: a pure
// validation routine that decides whether a candidate booking may be
// admitted onto a table given the table's occupancy bounds and the
// bookings already present. It performs no I/O and reads no clocks;
// callers inject the current time and are responsible for running the
// check inside the store's serialization point (see ReservationRepo).
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel admission errors. Handlers translate these into HTTP status
// codes with errors.Is; the wrapped messages carry the human detail.
var (
	// ErrMissingField signals a required input was absent entirely.
	ErrMissingField = errors.New("missing required field")
	// ErrBadFormat signals an input was present but unparsable, such as
	// a malformed date or duration string.
	ErrBadFormat = errors.New("bad format")
	// ErrTypeCoercion signals a field held a JSON value of the wrong
	// primitive type (e.g. a string where a number is required). It is
	// kept distinct from ErrBadFormat so the boundary can surface it as
	// an internal error rather than a validation rejection.
	ErrTypeCoercion = errors.New("type coercion failure")
	// ErrTooFewPeople rejects a party below the table's minimum.
	ErrTooFewPeople = errors.New("too few people for this table")
	// ErrTooManyPeople rejects a party above the table's maximum.
	ErrTooManyPeople = errors.New("too many people for this table")
	// ErrInPast rejects a start time earlier than the injected now.
	ErrInPast = errors.New("reservation can't be in the past")
	// ErrOverlap rejects a candidate whose interval intersects an
	// existing booking on the same table.
	ErrOverlap = errors.New("reservation overlaps with existing reservations")
)

// StartTimeLayout is the wire format of reservation start times.
const StartTimeLayout = "2006-01-02 15:04:05"

// Bounds are a table's inclusive occupancy limits.
type Bounds struct {
	MinPeople int
	MaxPeople int
}

// Candidate is the normalized reservation being validated.
type Candidate struct {
	NumberOfPeople int
	StartTime      time.Time
	Duration       time.Duration
}

// Booking is an existing reservation's footprint on the table. Only
// the interval and the identity (for self-exclusion on update) matter
// to admission.
type Booking struct {
	ID        int64
	StartTime time.Time
	Duration  time.Duration
}

// Overlaps reports whether the half-open intervals [aStart, aStart+aDur)
// and [bStart, bStart+bDur) share at least one instant. A booking that
// ends exactly when another begins does not overlap.
func Overlaps(aStart time.Time, aDur time.Duration, bStart time.Time, bDur time.Duration) bool {
	aEnd := aStart.Add(aDur)
	bEnd := bStart.Add(bDur)
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Validate decides whether cand may be admitted onto a table with the
// given bounds. existing must hold every booking currently on that
// table; the controller does not trust it to be pre-filtered. When
// validating an update, excludeID names the reservation being modified
// so it is not compared against itself; pass 0 for a create.
//
// Checks run in order and short-circuit: capacity, temporal validity
// (start == now is admissible), then overlap. A nil return means the
// candidate is valid and ready to persist.
func Validate(bounds Bounds, cand Candidate, existing []Booking, now time.Time, excludeID int64) error {
	if cand.NumberOfPeople < bounds.MinPeople {
		return fmt.Errorf("%w: minimum required: %d", ErrTooFewPeople, bounds.MinPeople)
	}
	if cand.NumberOfPeople > bounds.MaxPeople {
		return fmt.Errorf("%w: maximum allowed: %d", ErrTooManyPeople, bounds.MaxPeople)
	}
	if cand.StartTime.Before(now) {
		return ErrInPast
	}
	for _, b := range existing {
		if excludeID != 0 && b.ID == excludeID {
			continue
		}
		if Overlaps(cand.StartTime, cand.Duration, b.StartTime, b.Duration) {
			return ErrOverlap
		}
	}
	return nil
}

// ParseStartTime parses a "2006-01-02 15:04:05" wall-clock string into
// a UTC instant. Failure is reported as ErrBadFormat.
func ParseStartTime(s string) (time.Time, error) {
	t, err := time.Parse(StartTimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date/time %q", ErrBadFormat, s)
	}
	return t.UTC(), nil
}

// ParseDuration parses an "HH:MM:SS" span. Negative components and any
// other shape are rejected with ErrBadFormat.
func ParseDuration(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: invalid duration %q", ErrBadFormat, s)
	}
	var comps [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: invalid duration %q", ErrBadFormat, s)
		}
		comps[i] = n
	}
	return time.Duration(comps[0])*time.Hour +
		time.Duration(comps[1])*time.Minute +
		time.Duration(comps[2])*time.Second, nil
}

// FormatDuration renders a span back into the "HH:MM:SS" wire format.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// CoerceInt decodes a JSON number into an int. A raw value that is
// valid JSON but not an integer number (a quoted string, a float, an
// object) is reported as ErrTypeCoercion: the field was present, the
// caller simply sent the wrong type.
func CoerceInt(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("%w: expected an integer, got %s", ErrTypeCoercion, strings.TrimSpace(string(raw)))
	}
	return n, nil
}
