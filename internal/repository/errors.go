// Package repository implements MySQL persistence for users, refresh
// sessions, the settings catalog, rentals and board content. Sentinel
// errors defined here let handlers translate failures into HTTP statuses
// without inspecting driver errors.
package repository

import "errors"

// ErrIDExists is returned when an insert collides with an existing primary
// key, e.g. two signups racing for the same user id. Handlers translate it
// into HTTP 409.
var ErrIDExists = errors.New("id already exists")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as applying for equipment that is already rented
// in an overlapping window. Handlers translate it into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrTokenMismatch is returned when a refresh rotation loses the
// compare-and-swap against the stored token, meaning the presented token is
// no longer the most recently issued one. Handlers translate it into
// HTTP 401.
var ErrTokenMismatch = errors.New("refresh token mismatch")
