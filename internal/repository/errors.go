// Package repository contains data access logic for the canonical store.
// Each entity gets its own repository struct over a shared *sql.DB.  The
// sentinel errors below let higher layers distinguish failure scenarios
// without inspecting driver-specific error strings.
package repository

import "errors"

// ErrVenueNotFound is returned when a venue row does not exist.
var ErrVenueNotFound = errors.New("venue not found")

// ErrFilmNotFound is returned when a film row does not exist.
var ErrFilmNotFound = errors.New("film not found")

// ErrScreeningNotFound is returned when a screening row does not exist.
var ErrScreeningNotFound = errors.New("screening not found")
