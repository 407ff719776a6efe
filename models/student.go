package models

import "time"

// Student is a roster record. At most one Student exists per non-nil
// UserID; UserID stays nil until an authenticated account completes its
// profile.
type Student struct {
	ID        string    `json:"id"`
	UserID    *string   `json:"user_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	FeesPaid  bool      `json:"fees_paid"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewStudent carries the fields of a student to create; id and timestamps
// are assigned by the data service.
type NewStudent struct {
	UserID   *string `json:"user_id,omitempty"`
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	FeesPaid bool    `json:"fees_paid"`
}

// StudentUpdate is a partial update; nil fields are left untouched.
type StudentUpdate struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	FeesPaid *bool   `json:"fees_paid,omitempty"`
}
