package model

// Table is a physical restaurant table with inclusive occupancy bounds.
// A reservation on the table must seat between MinPeople and MaxPeople
// guests. The bounds are fixed once the table is created; there is no
// resize operation.
//
// Fields:
//  ID        – primary key identifier.
//  MinPeople – smallest party the table accepts.
//  MaxPeople – largest party the table accepts.
type Table struct {
	ID        int64 `json:"id"`
	MinPeople int   `json:"min_people"`
	MaxPeople int   `json:"max_people"`
}
