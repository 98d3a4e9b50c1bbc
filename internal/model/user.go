package model // package model contains plain data structures shared by repositories and services

import "time"

// Role is the authorization role stored on a user row and carried in the
// access token's "role" claim.
type Role string

const (
	// RoleUser is an ordinary customer account.
	RoleUser Role = "USER"
	// RoleTheatreOperator manages theatres and screens.  The stored value
	// keeps the historical THEATER_OWNER spelling used by the other services.
	RoleTheatreOperator Role = "THEATER_OWNER"
	// RoleAdmin accounts must pass an OTP step-up before a session is issued.
	RoleAdmin Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleTheatreOperator, RoleAdmin:
		return true
	}
	return false
}

// User mirrors the 'users' table.  Email is always stored lower-case so
// lookups are case-insensitive.  PasswordHash is a bcrypt hash and is never
// serialized to clients.
type User struct {
	ID           uint64    // primary key
	FullName     string    // display name returned on login
	Email        string    // unique, lower-case
	PasswordHash string    // bcrypt hash
	PhoneNumber  string    // optional profile field
	City         string    // optional profile field
	Role         Role      // USER, THEATER_OWNER or ADMIN
	IsActive     bool      // false after soft delete
	CreatedAt    time.Time // creation timestamp (UTC)
	UpdatedAt    time.Time // last update timestamp (UTC)
}

// ProfileUpdate carries the optional fields accepted by a profile update.
// A nil pointer leaves the stored value untouched.
type ProfileUpdate struct {
	FullName    *string
	PhoneNumber *string
	City        *string
}

// Empty reports whether no field was supplied.
func (p ProfileUpdate) Empty() bool {
	return p.FullName == nil && p.PhoneNumber == nil && p.City == nil
}
