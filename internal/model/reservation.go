package model

import "time"

// Status is the lifecycle state of a reservation.
type Status string

const (
    StatusBooked    Status = "booked"
    StatusSeated    Status = "seated"
    StatusFinished  Status = "finished"
    StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
    switch s {
    case StatusBooked, StatusSeated, StatusFinished, StatusCancelled:
        return true
    }
    return false
}

// Terminal reports whether no further transition is possible from s.
func (s Status) Terminal() bool {
    return s == StatusFinished || s == StatusCancelled
}

// Reservation is a party's booking for a date and time slot.  Rows are
// never deleted; a reservation ends as finished or cancelled.
//
// Fields:
//  ID              – primary key identifier.
//  FirstName       – guest first name.
//  LastName        – guest last name.
//  MobileNumber    – contact number exactly as entered.
//  ReservationDate – calendar date, YYYY-MM-DD.
//  ReservationTime – wall-clock time, HH:MM.
//  People          – party size, at least 1.
//  Status          – lifecycle state.
//  CreatedAt       – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Reservation struct {
    ID              uint64    `json:"reservation_id"`   // reservations.reservation_id
    FirstName       string    `json:"first_name"`       // reservations.first_name
    LastName        string    `json:"last_name"`        // reservations.last_name
    MobileNumber    string    `json:"mobile_number"`    // reservations.mobile_number
    ReservationDate string    `json:"reservation_date"` // reservations.reservation_date
    ReservationTime string    `json:"reservation_time"` // reservations.reservation_time
    People          int       `json:"people"`           // reservations.people
    Status          Status    `json:"status"`           // reservations.status
    CreatedAt       time.Time `json:"created_at"`       // reservations.created_at
    UpdatedAt       time.Time `json:"updated_at"`       // reservations.updated_at
}
