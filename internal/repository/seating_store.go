package repository

import (
    "context"
    "database/sql"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// SeatingTx is what a seating operation may read and write inside one
// transaction.  Writes are conditional: they fail with ErrConflict when
// the row is no longer in the state the caller observed.
type SeatingTx interface {
    Reservation(ctx context.Context, id uint64) (*model.Reservation, error)
    Table(ctx context.Context, id uint64) (*model.Table, error)
    Occupy(ctx context.Context, tableID, reservationID uint64, people int) error
    Release(ctx context.Context, tableID, reservationID uint64) error
    SetStatus(ctx context.Context, reservationID uint64, from, to model.Status) error
}

// SeatingStore runs seating work in a single SQL transaction over the
// reservation and table repositories.
type SeatingStore struct {
    db           *sql.DB
    reservations *ReservationRepo
    tables       *TableRepo
}

// NewSeatingStore binds a SeatingStore to db.
func NewSeatingStore(db *sql.DB, reservations *ReservationRepo, tables *TableRepo) *SeatingStore {
    return &SeatingStore{db: db, reservations: reservations, tables: tables}
}

// InTx begins a transaction, hands it to fn and commits when fn returns
// nil.  Any error from fn rolls everything back and is returned as is.
func (s *SeatingStore) InTx(ctx context.Context, fn func(tx SeatingTx) error) error {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(&sqlSeatingTx{tx: tx, reservations: s.reservations, tables: s.tables}); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

type sqlSeatingTx struct {
    tx           *sql.Tx
    reservations *ReservationRepo
    tables       *TableRepo
}

func (t *sqlSeatingTx) Reservation(ctx context.Context, id uint64) (*model.Reservation, error) {
    return t.reservations.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlSeatingTx) Table(ctx context.Context, id uint64) (*model.Table, error) {
    return t.tables.GetByIDTx(ctx, t.tx, id)
}

func (t *sqlSeatingTx) Occupy(ctx context.Context, tableID, reservationID uint64, people int) error {
    return t.tables.OccupyTx(ctx, t.tx, tableID, reservationID, people)
}

func (t *sqlSeatingTx) Release(ctx context.Context, tableID, reservationID uint64) error {
    return t.tables.ReleaseTx(ctx, t.tx, tableID, reservationID)
}

func (t *sqlSeatingTx) SetStatus(ctx context.Context, reservationID uint64, from, to model.Status) error {
    return t.reservations.UpdateStatusTx(ctx, t.tx, reservationID, from, to)
}
