package models

import "time"

// User represents a platform account stored in the users table. Accounts are
// immutable after registration; there are no update or delete endpoints.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CourseID     *int64    `db:"course_id" json:"course_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// UserInfo is the public projection of a user embedded in responses.
type UserInfo struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Info projects the public fields of a user.
func (u *User) Info() UserInfo {
	return UserInfo{ID: u.ID, Name: u.Name, Email: u.Email}
}
