// Package queue defines the message payloads exchanged over the broker
// and the background consumer that turns them into an audit log.
package queue

// ReservationConfirmedEvent is published after a reservation is
// admitted and committed. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID    int64  `json:"reservation_id"`
	UserName         string `json:"user"`
	TableID          int64  `json:"table_id"`
	NumberOfPeople   int    `json:"number_of_people"`
	StartsAt         string `json:"starts_at"`
	EndsAt           string `json:"ends_at"`
	ConfirmationCode string `json:"confirmation_code"`
	ConfirmedAt      string `json:"confirmed_at"`
}
