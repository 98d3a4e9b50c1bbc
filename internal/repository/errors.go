// Package repository implements the credential store on MySQL.  The sentinel
// values below let the service layer tell "no row matched" apart from
// infrastructure failures without inspecting driver errors.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row or a conditional
// update affects no row (already used, already revoked, expired).
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose email is taken.
var ErrEmailExists = errors.New("email already exists")
