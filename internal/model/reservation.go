package model

import "time"

// Reservation is a time-bounded booking of one table by one user.
// StartTime is stored in UTC and Duration is the booked time span, so
// the occupied interval is the half-open [StartTime, StartTime+Duration).
//
// Fields:
//  ID               – primary key identifier.
//  UserID           – user who reserved the table.
//  TableID          – table being reserved.
//  NumberOfPeople   – party size; must fit the table's occupancy bounds.
//  StartTime        – UTC start of the booking.
//  Duration         – booked time span.
//  ConfirmationCode – UUID handed to the guest on admission.
//  CreatedAt        – creation timestamp.
//  UpdatedAt        – last update timestamp.
type Reservation struct {
	ID               int64
	UserID           int64
	TableID          int64
	NumberOfPeople   int
	StartTime        time.Time
	Duration         time.Duration
	ConfirmationCode string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// EndTime returns the instant the booking ends. The end itself is not
// occupied: a reservation starting exactly at EndTime does not collide.
func (r Reservation) EndTime() time.Time {
	return r.StartTime.Add(r.Duration)
}
