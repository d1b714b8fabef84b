package model

import "time"

// Table is a physical dining table.  ReservationID is nil while the
// table is free and points at the seated reservation otherwise.
type Table struct {
    ID            uint64    `json:"table_id"`       // restaurant_tables.table_id
    TableName     string    `json:"table_name"`     // restaurant_tables.table_name
    Capacity      int       `json:"capacity"`       // restaurant_tables.capacity
    ReservationID *uint64   `json:"reservation_id"` // restaurant_tables.reservation_id (nullable)
    CreatedAt     time.Time `json:"created_at"`     // restaurant_tables.created_at
    UpdatedAt     time.Time `json:"updated_at"`     // restaurant_tables.updated_at
}

// Occupied reports whether a reservation is currently seated at t.
func (t *Table) Occupied() bool { return t.ReservationID != nil }
