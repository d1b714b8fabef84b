// Package repository defines error types that are reused across multiple
// repositories.  Services translate these into booking errors; handlers
// never see them directly.
package repository

import "errors"

// ErrReservationNotFound indicates that no reservation row matched.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrTableNotFound indicates that no restaurant_tables row matched.
var ErrTableNotFound = errors.New("table not found")

// ErrConflict is returned when a conditional update matched no rows
// because the row no longer holds the expected state, for example a
// table that was occupied by a concurrent request.
var ErrConflict = errors.New("conflict")

// ErrStaffNotFound indicates that no staff account matched.
var ErrStaffNotFound = errors.New("staff user not found")
