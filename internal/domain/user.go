package domain

import "time"

// User represents a registered author of the blog.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Email        string
	Phone        string
	Address      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Registration carries the raw fields submitted to create a user.
type Registration struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string
	Phone           string
	Address         string
}

// ProfileUpdate carries the mutable profile fields of a user.
type ProfileUpdate struct {
	Username string
	Email    string
	Phone    string
	Address  string
}
