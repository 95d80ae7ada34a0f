// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by someone
// else, while ErrAlreadyCancelled signals that a booking's status
// transition has already happened.
package repository

import "errors"

// ErrShowNotFound is returned when a show cannot be located in the DB.
var ErrShowNotFound = errors.New("show not found")

// ErrBookingNotFound is returned when a booking does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrBookingNotFound = errors.New("booking not found")

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrAlreadyCancelled is returned when cancelling a booking whose status
// is already CANCELLED. Handlers should translate this into an HTTP 409
// response.
var ErrAlreadyCancelled = errors.New("booking already cancelled")

// ErrCinemaNotFound is returned when a cinema cannot be found in the DB.
var ErrCinemaNotFound = errors.New("cinema not found")
