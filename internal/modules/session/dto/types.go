package dto

import "time"

type LoginInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
	UserType        string
}

type UserOutput struct {
	Name      string
	Email     string
	Role      string
	CreatedAt string
	Avatar    string
}

type SessionOutput struct {
	Token   string
	HasUser bool
	User    UserOutput
}

type RegisterOutput struct {
	Email    string
	UserType string
}

// ProfileOutput is what the profile screen renders. Role already carries the
// display default.
type ProfileOutput struct {
	Name      string
	Email     string
	Role      string
	CreatedAt string
	Avatar    string
	HasClaims bool
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Expired   bool
}
