package models

import (
	"github.com/pocketbase/pocketbase/tools/types"
)

// Identity is what request handlers need to know about the caller.
type Identity interface {
	IdentityID() int64
	DisplayName() string
}

type User struct {
	ID           int64          `db:"id" json:"id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Address      string         `db:"address" json:"address,omitempty"`
	Contact      string         `db:"contact" json:"contact,omitempty"`
	Created      types.DateTime `db:"created" json:"created"`
}

func (u *User) IdentityID() int64 { return u.ID }

func (u *User) DisplayName() string { return u.Name }

// Session is the result of a successful login.
type Session struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Remember  bool   `json:"remember"`
	ExpiresIn int64  `json:"expires_in"` // seconds

	User *User `json:"user,omitempty"`
}
