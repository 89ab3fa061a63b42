package model

import "time"

// User is a guest who places orders, keeps an ingredient inventory and
// books tables. The name doubles as a public identifier in several
// endpoints, so it is unique.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// StaffUser is a back-office account used to access the admin surface.
// Only the bcrypt hash of the password is stored.
type StaffUser struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
