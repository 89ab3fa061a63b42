// Package repository holds the data access layer. Each entity gets a
// small repo struct with hand-written SQL; sentinel errors defined here
// and next to the entity repos let handlers translate failures into
// boundary-appropriate responses without inspecting driver errors.
package repository

import (
	"errors"
	"strings"
)

// ErrDuplicate is returned when an insert or update violates a unique
// constraint, such as creating a second user with the same name.
// Handlers should translate this into an HTTP 400 response.
var ErrDuplicate = errors.New("duplicate entry")

// isDuplicate detects the MySQL duplicate-key error (code 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
