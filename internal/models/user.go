package models

import "time"

// User is a registered account. PasswordHash is a bcrypt hash.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
