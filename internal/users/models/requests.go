package models

import "strings"

// CreateUserRequest is the contract for creating a user.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,notblank,max=100" jsonschema:"description=Unique handle of the user"`
	Email    string `json:"email" validate:"required,email" jsonschema:"description=Contact email address"`
}

// Normalize trims surrounding whitespace.
func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
}

// UpdateUserRequest replaces only the fields that are set.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty" validate:"omitempty,notblank,max=100"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
}

// Normalize trims surrounding whitespace.
func (r *UpdateUserRequest) Normalize() {
	if r.Username != nil {
		v := strings.TrimSpace(*r.Username)
		r.Username = &v
	}
	if r.Email != nil {
		v := strings.TrimSpace(*r.Email)
		r.Email = &v
	}
}
