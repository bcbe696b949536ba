package domain

import (
	"strings"
	"time"

	apperrors "airpulse/internal/platform/errors"
)

const DefaultRole = "Patient"

type User struct {
	ID        string `json:"_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
}

// DisplayRole is the role shown on the profile screen.
func (u User) DisplayRole() string {
	if strings.TrimSpace(u.Role) == "" {
		return DefaultRole
	}
	return u.Role
}

// Session is the persisted auth state. User is nil when the login response
// carried only a token.
type Session struct {
	Token string
	User  *User
}

func (s Session) Validate() error {
	if strings.TrimSpace(s.Token) == "" {
		return apperrors.Invalid("session token is required")
	}
	return nil
}

type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return apperrors.Invalid("Please enter both email and password")
	}
	return nil
}

type UserType string

const (
	UserTypeNormal UserType = "Normal"
	UserTypeDoctor UserType = "Doctor"
)

// ParseUserType accepts the two account kinds case-insensitively. Empty
// input means Normal.
func ParseUserType(raw string) (UserType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "normal":
		return UserTypeNormal, nil
	case "doctor":
		return UserTypeDoctor, nil
	default:
		return "", apperrors.Invalid("User type must be Normal or Doctor")
	}
}

type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	UserType        UserType
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" || r.ConfirmPassword == "" {
		return apperrors.Invalid("Please fill all fields")
	}
	if len(r.Password) < 6 {
		return apperrors.Invalid("Password must be at least 6 characters")
	}
	if r.Password != r.ConfirmPassword {
		return apperrors.Invalid("Passwords do not match")
	}
	if r.UserType != UserTypeNormal && r.UserType != UserTypeDoctor {
		return apperrors.Invalid("User type must be Normal or Doctor")
	}
	return nil
}

// Claims are read from JWT tokens without verification, for display only.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
