// Package queue carries seating events over RabbitMQ: the publisher used
// after each committed change and the background consumer that appends
// them to logs/seating.log.
package queue

import (
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// SeatingQueue is the durable queue all seating events go through.
const SeatingQueue = "seating.events"

// Event types.
const (
    EventReservationCreated   = "reservation.created"
    EventReservationSeated    = "reservation.seated"
    EventTableFinished        = "table.finished"
    EventReservationCancelled = "reservation.cancelled"
)

// SeatingEvent is published after a reservation or table changes.  It
// carries enough for consumers to log or notify without querying the
// database.
type SeatingEvent struct {
    ID              string `json:"id"`
    Type            string `json:"type"`
    ReservationID   uint64 `json:"reservation_id"`
    GuestName       string `json:"guest_name"`
    MobileNumber    string `json:"mobile_number"`
    People          int    `json:"people"`
    ReservationDate string `json:"reservation_date"`
    ReservationTime string `json:"reservation_time"`
    Status          string `json:"status"`
    TableID         uint64 `json:"table_id,omitempty"`
    TableName       string `json:"table_name,omitempty"`
    OccurredAt      string `json:"occurred_at"`
}

// NewSeatingEvent builds an event for r, optionally at table t.
func NewSeatingEvent(typ string, r *model.Reservation, t *model.Table) SeatingEvent {
    ev := SeatingEvent{
        ID:              uuid.NewString(),
        Type:            typ,
        ReservationID:   r.ID,
        GuestName:       r.FirstName + " " + r.LastName,
        MobileNumber:    r.MobileNumber,
        People:          r.People,
        ReservationDate: r.ReservationDate,
        ReservationTime: r.ReservationTime,
        Status:          string(r.Status),
        OccurredAt:      time.Now().UTC().Format(time.RFC3339),
    }
    if t != nil {
        ev.TableID = t.ID
        ev.TableName = t.TableName
    }
    return ev
}
