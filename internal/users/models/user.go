package models

import (
	"time"

	"intentions/internal/platform/entity"
	"intentions/pkg/platform/validation"
)

// User is an account known to the system.
//
// Invariants:
//   - Username is non-empty after trimming
//   - Email is a syntactically valid address
type User struct {
	entity.Meta
	Username string `json:"username"`
	Email    string `json:"email"`
}

// NewUser validates and constructs an unpersisted user.
func NewUser(username, email string, now time.Time) (*User, error) {
	username, err := entity.Required("username", "Username", username)
	if err != nil {
		return nil, err
	}
	email, err = entity.Required("email", "Email", email)
	if err != nil {
		return nil, err
	}
	if err := validation.Var("email", email, "email"); err != nil {
		return nil, err
	}
	return &User{Meta: entity.NewMeta(now), Username: username, Email: email}, nil
}

func (u *User) Clone() *User {
	out := *u
	return &out
}

// Apply returns the replacement for u with the supplied fields changed.
func (u *User) Apply(req *UpdateUserRequest, now time.Time) (*User, error) {
	username, email := u.Username, u.Email
	if req.Username != nil {
		username = *req.Username
	}
	if req.Email != nil {
		email = *req.Email
	}
	return NewUser(username, email, now)
}
