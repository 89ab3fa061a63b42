package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/burgir/backoffice/internal/model"
	"golang.org/x/crypto/bcrypt"
)

// ErrStaffNotFound is returned when a staff account lookup fails.
var ErrStaffNotFound = errors.New("staff account not found")

// StaffRepo manages back-office accounts. Passwords are hashed with
// bcrypt before they touch the database.
type StaffRepo struct {
	db *sql.DB
}

// NewStaffRepo returns a StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{db: db} }

// Create inserts a staff account with the given plain password and
// returns its ID. An email that is already registered yields
// ErrDuplicate.
func (r *StaffRepo) Create(ctx context.Context, email, password, role string, cost int) (int64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO staff_users (email, password_hash, role) VALUES (?, ?, ?)`,
		email, string(hash), role)
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	return res.LastInsertId()
}

// GetByEmail fetches a staff account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*model.StaffUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s model.StaffUser
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, role, created_at FROM staff_users WHERE email = ?`,
		email).Scan(&s.ID, &s.Email, &s.PasswordHash, &s.Role, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStaffNotFound
		}
		return nil, err
	}
	return &s, nil
}

// VerifyPassword safely compares a bcrypt hash and a plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
