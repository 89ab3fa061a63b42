package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, min int) time.Time {
	return time.Date(2030, 6, 15, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	twoHours := 2 * time.Hour

	tests := []struct {
		name   string
		aStart time.Time
		aDur   time.Duration
		bStart time.Time
		bDur   time.Duration
		want   bool
	}{
		{"identical intervals", at(18, 0), twoHours, at(18, 0), twoHours, true},
		{"partial overlap", at(18, 0), twoHours, at(19, 0), twoHours, true},
		{"contained interval", at(18, 0), twoHours, at(18, 30), time.Hour, true},
		{"back to back is free", at(18, 0), twoHours, at(20, 0), twoHours, false},
		{"one minute apart", at(18, 0), twoHours, at(20, 1), time.Hour, false},
		{"one minute into the end", at(18, 0), twoHours, at(19, 59), time.Hour, true},
		{"fully disjoint", at(8, 0), time.Hour, at(20, 0), time.Hour, false},
		{"zero duration at start", at(18, 0), 0, at(18, 0), twoHours, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aDur, tt.bStart, tt.bDur))
			// Overlap is symmetric in its two intervals.
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bDur, tt.aStart, tt.aDur))
		})
	}
}

func TestValidateCapacity(t *testing.T) {
	bounds := Bounds{MinPeople: 2, MaxPeople: 6}
	now := at(12, 0)

	tests := []struct {
		people int
		want   error
	}{
		{1, ErrTooFewPeople},
		{2, nil},
		{4, nil},
		{6, nil},
		{7, ErrTooManyPeople},
		{0, ErrTooFewPeople},
	}
	for _, tt := range tests {
		cand := Candidate{NumberOfPeople: tt.people, StartTime: at(18, 0), Duration: time.Hour}
		err := Validate(bounds, cand, nil, now, 0)
		if tt.want == nil {
			assert.NoError(t, err, "people=%d", tt.people)
		} else {
			assert.ErrorIs(t, err, tt.want, "people=%d", tt.people)
		}
	}
}

func TestValidatePast(t *testing.T) {
	bounds := Bounds{MinPeople: 1, MaxPeople: 8}
	now := at(12, 0)

	past := Candidate{NumberOfPeople: 2, StartTime: now.Add(-time.Second), Duration: time.Hour}
	assert.ErrorIs(t, Validate(bounds, past, nil, now, 0), ErrInPast)

	// Starting exactly now is admissible.
	exact := Candidate{NumberOfPeople: 2, StartTime: now, Duration: time.Hour}
	assert.NoError(t, Validate(bounds, exact, nil, now, 0))

	future := Candidate{NumberOfPeople: 2, StartTime: now.Add(time.Second), Duration: time.Hour}
	assert.NoError(t, Validate(bounds, future, nil, now, 0))
}

func TestValidateOverlap(t *testing.T) {
	bounds := Bounds{MinPeople: 1, MaxPeople: 8}
	now := at(12, 0)
	existing := []Booking{
		{ID: 1, StartTime: at(18, 0), Duration: 2 * time.Hour},
	}

	colliding := Candidate{NumberOfPeople: 2, StartTime: at(19, 0), Duration: 2 * time.Hour}
	assert.ErrorIs(t, Validate(bounds, colliding, existing, now, 0), ErrOverlap)

	// A booking starting exactly when the other ends is admitted.
	adjacent := Candidate{NumberOfPeople: 2, StartTime: at(20, 0), Duration: time.Hour}
	assert.NoError(t, Validate(bounds, adjacent, existing, now, 0))

	before := Candidate{NumberOfPeople: 2, StartTime: at(16, 0), Duration: 2 * time.Hour}
	assert.NoError(t, Validate(bounds, before, existing, now, 0))
}

func TestValidateExcludesSelf(t *testing.T) {
	bounds := Bounds{MinPeople: 1, MaxPeople: 8}
	now := at(12, 0)
	existing := []Booking{
		{ID: 7, StartTime: at(18, 0), Duration: 2 * time.Hour},
		{ID: 9, StartTime: at(21, 0), Duration: time.Hour},
	}

	// Re-admitting a reservation over its own slot must pass.
	self := Candidate{NumberOfPeople: 3, StartTime: at(18, 30), Duration: time.Hour}
	assert.NoError(t, Validate(bounds, self, existing, now, 7))

	// But it still collides with the other booking.
	moved := Candidate{NumberOfPeople: 3, StartTime: at(21, 30), Duration: time.Hour}
	assert.ErrorIs(t, Validate(bounds, moved, existing, now, 7), ErrOverlap)

	// excludeID 0 means a create: nothing is skipped.
	assert.ErrorIs(t, Validate(bounds, self, existing, now, 0), ErrOverlap)
}

func TestValidateOrder(t *testing.T) {
	// Capacity is checked before the past check and the overlap scan,
	// so an oversized party in the past on a busy slot reports size.
	bounds := Bounds{MinPeople: 2, MaxPeople: 4}
	now := at(12, 0)
	existing := []Booking{{ID: 1, StartTime: at(10, 0), Duration: 12 * time.Hour}}

	cand := Candidate{NumberOfPeople: 9, StartTime: at(11, 0), Duration: time.Hour}
	assert.ErrorIs(t, Validate(bounds, cand, existing, now, 0), ErrTooManyPeople)

	cand.NumberOfPeople = 3
	assert.ErrorIs(t, Validate(bounds, cand, existing, now, 0), ErrInPast)

	cand.StartTime = at(13, 0)
	assert.ErrorIs(t, Validate(bounds, cand, existing, now, 0), ErrOverlap)
}

func TestParseStartTime(t *testing.T) {
	got, err := ParseStartTime("2030-06-15 18:00:00")
	require.NoError(t, err)
	assert.Equal(t, at(18, 0), got)

	for _, bad := range []string{"", "2030-06-15", "18:00:00", "2030/06/15 18:00:00", "not a date"} {
		_, err := ParseStartTime(bad)
		assert.ErrorIs(t, err, ErrBadFormat, "input %q", bad)
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"02:00:00", 2 * time.Hour},
		{"00:30:00", 30 * time.Minute},
		{"01:30:15", time.Hour + 30*time.Minute + 15*time.Second},
		{"00:00:00", 0},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		// The codec round-trips.
		assert.Equal(t, tt.in, FormatDuration(got), tt.in)
	}

	for _, bad := range []string{"", "90", "1:30", "01:30:xx", "-1:00:00", "01:-5:00", "1 hour"} {
		_, err := ParseDuration(bad)
		assert.ErrorIs(t, err, ErrBadFormat, "input %q", bad)
	}
}

func TestCoerceInt(t *testing.T) {
	n, err := CoerceInt([]byte(`4`))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	for _, bad := range []string{`"many"`, `"4 people"`, `2.5`, `{"n":4}`, `[4]`, `true`} {
		_, err := CoerceInt([]byte(bad))
		assert.ErrorIs(t, err, ErrTypeCoercion, "input %s", bad)
	}
}
