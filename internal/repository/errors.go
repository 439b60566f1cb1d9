// Package repository provides the MySQL persistence layer: the Store
// consumed by the booking engine plus per-table repositories backing
// the browse and admin surfaces.  Sentinel errors defined here let
// handlers map failure scenarios onto HTTP statuses without inspecting
// driver errors.
package repository

import "errors"

// ErrConflict is returned when a delete cannot be performed because of
// dependent records, such as removing a cabin that has reservations.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
