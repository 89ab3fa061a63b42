package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/burgir/backoffice/internal/repository"
)

// RoleStaff is the role granted to back-office accounts; the admin
// surface requires it.
const RoleStaff = "STAFF"

// AuthHandler registers staff accounts and issues access tokens.
type AuthHandler struct {
	Staff      *repository.StaffRepo
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthHandler returns an AuthHandler with the given signing secret,
// token lifetime and bcrypt cost.
func NewAuthHandler(staff *repository.StaffRepo, secret string, ttlMin, bcryptCost int) *AuthHandler {
	return &AuthHandler{
		Staff:      staff,
		JWTSecret:  secret,
		TokenTTL:   time.Duration(ttlMin) * time.Minute,
		BcryptCost: bcryptCost,
	}
}

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (b *credentialsBody) validate() string {
	b.Email = strings.TrimSpace(b.Email)
	if b.Email == "" || !strings.Contains(b.Email, "@") {
		return "a valid email is required"
	}
	if len(b.Password) < 8 {
		return "password must be at least 8 characters"
	}
	return ""
}

// Register handles POST /v1/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var body credentialsBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := body.validate(); msg != "" {
		return badRequest(c, msg)
	}
	id, err := h.Staff.Create(c.Request().Context(), body.Email, body.Password, RoleStaff, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
		}
		return internalError(c, "could not register")
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": body.Email, "role": RoleStaff})
}

// Login handles POST /v1/auth/login and returns a signed access token.
// Unknown emails and wrong passwords get the same response so the
// endpoint does not leak which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var body credentialsBody
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx := c.Request().Context()
	acct, err := h.Staff.GetByEmail(ctx, body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrStaffNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return internalError(c, "db error")
	}
	if !repository.VerifyPassword(acct.PasswordHash, body.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	token, exp, err := h.mintAccessToken(acct.ID, acct.Role)
	if err != nil {
		return internalError(c, "could not issue token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"expires_at":   exp.Format(time.RFC3339),
	})
}

// mintAccessToken signs an HS256 JWT with sub, role, exp and iat
// claims. The subject is the staff ID as a string so middleware can
// read it without numeric type juggling.
func (h *AuthHandler) mintAccessToken(staffID int64, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(h.TokenTTL)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(staffID, 10),
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(h.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
