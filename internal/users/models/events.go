package models

import (
	"time"

	"intentions/internal/platform/notify"
)

const (
	KindUserCreated = "user.created"
	KindUserUpdated = "user.updated"
	KindUserDeleted = "user.deleted"
)

// Kinds lists every notification kind the users family publishes.
var Kinds = []string{KindUserCreated, KindUserUpdated, KindUserDeleted}

// UserChanged is published after a user is created or updated.
type UserChanged struct {
	notify.Event
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func NewUserCreated(u *User, at time.Time) UserChanged {
	return UserChanged{Event: notify.NewEvent(KindUserCreated, at), UserID: u.ID, Username: u.Username, Email: u.Email}
}

func NewUserUpdated(u *User, at time.Time) UserChanged {
	return UserChanged{Event: notify.NewEvent(KindUserUpdated, at), UserID: u.ID, Username: u.Username, Email: u.Email}
}

// UserDeleted is published after a user is removed.
type UserDeleted struct {
	notify.Event
	UserID int64 `json:"user_id"`
}

func NewUserDeleted(id int64, at time.Time) UserDeleted {
	return UserDeleted{Event: notify.NewEvent(KindUserDeleted, at), UserID: id}
}
