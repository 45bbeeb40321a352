package models

import "time"

const (
	RoleStudent = "Student"
	RoleTrainer = "Trainer"
)

// Session is the server-side record behind a client's opaque session token.
// The token itself is the store key and is never part of the stored payload.
type Session struct {
	Token     string    `json:"-"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
