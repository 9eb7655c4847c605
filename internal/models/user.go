package models

import "time"

// User represents a registered account. The relay core treats users as
// read-only; rows are created only by signup and the mkuser CLI.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
