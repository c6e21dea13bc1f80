package models

import "time"

// Role is the closed set of principal roles. RoleAnonymous is the zero
// value and never authenticates into a role-gated view.
type Role string

const (
	RoleAnonymous Role = ""
	RoleFounder   Role = "founder"
	RoleInvestor  Role = "investor"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is one of the authenticatable roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFounder, RoleInvestor, RoleAdmin:
		return true
	}
	return false
}

// Identity is an authenticated principal. Role is immutable after creation.
type Identity struct {
	ID    string `json:"id" db:"id"`
	Role  Role   `json:"role" db:"role"`
	Name  string `json:"name" db:"name"`
	Email string `json:"email" db:"email"`
}

// User is the stored account row backing an Identity.
type User struct {
	ID           string    `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	Name         string    `json:"name" db:"name"`
	OTPOnly      bool      `json:"otp_only" db:"otp_only"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Identity projects the account row to its principal view.
func (u User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role, Name: u.Name, Email: u.Email}
}
