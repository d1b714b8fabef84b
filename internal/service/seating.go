package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Seating is the only path that changes a reservation's status together
// with a table's occupancy.  Both writes of an operation share one
// transaction and are conditional, so concurrent requests for the same
// table or reservation cannot both succeed.
type Seating struct {
	store  SeatingStore
	events EventPublisher
	logger *log.Logger
}

// NewSeating builds the coordinator.  events may be nil.
func NewSeating(store SeatingStore, events EventPublisher, logger *log.Logger) *Seating {
	if logger == nil {
		logger = log.New("seating")
	}
	return &Seating{store: store, events: events, logger: logger}
}

// Seat binds a booked reservation to a free table that can hold the party
// and marks the reservation seated.
func (s *Seating) Seat(ctx context.Context, reservationID, tableID uint64) (*model.Table, error) {
	// Once started, the transaction completes or rolls back even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)

	var (
		seated *model.Table
		res    *model.Reservation
	)
	err := s.store.InTx(ctx, func(tx repository.SeatingTx) error {
		r, err := tx.Reservation(ctx, reservationID)
		if err != nil {
			return translate(err, "reservation", reservationID)
		}
		if err := booking.CheckTransition(r, model.StatusSeated); err != nil {
			return err
		}
		t, err := tx.Table(ctx, tableID)
		if err != nil {
			return translate(err, "table", tableID)
		}
		if t.Occupied() {
			return tableOccupied(tableID)
		}
		if t.Capacity < r.People {
			return booking.Conflict("table", tableID,
				fmt.Sprintf("too many guests (%d) for table size (%d)", r.People, t.Capacity))
		}

		if err := tx.Occupy(ctx, tableID, reservationID, r.People); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return tableOccupied(tableID)
			}
			return translate(err, "table", tableID)
		}
		if err := tx.SetStatus(ctx, reservationID, model.StatusBooked, model.StatusSeated); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return booking.Conflict("reservation", reservationID, "reservation is no longer booked")
			}
			return translate(err, "reservation", reservationID)
		}

		if seated, err = tx.Table(ctx, tableID); err != nil {
			return err
		}
		r.Status = model.StatusSeated
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("seated reservation %d at table %d", reservationID, tableID)
	notify(ctx, s.events, s.logger, queue.NewSeatingEvent(queue.EventReservationSeated, res, seated))
	return seated, nil
}

// Finish releases an occupied table and marks its reservation finished.
func (s *Seating) Finish(ctx context.Context, tableID uint64) (*model.Table, error) {
	ctx = context.WithoutCancel(ctx)

	var (
		freed *model.Table
		res   *model.Reservation
	)
	err := s.store.InTx(ctx, func(tx repository.SeatingTx) error {
		t, err := tx.Table(ctx, tableID)
		if err != nil {
			return translate(err, "table", tableID)
		}
		if !t.Occupied() {
			return tableNotOccupied(tableID)
		}
		reservationID := *t.ReservationID

		r, err := tx.Reservation(ctx, reservationID)
		if err != nil {
			return translate(err, "reservation", reservationID)
		}
		if err := booking.CheckTransition(r, model.StatusFinished); err != nil {
			return err
		}

		if err := tx.Release(ctx, tableID, reservationID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return tableNotOccupied(tableID)
			}
			return translate(err, "table", tableID)
		}
		if err := tx.SetStatus(ctx, reservationID, model.StatusSeated, model.StatusFinished); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return booking.Conflict("reservation", reservationID, "reservation is no longer seated")
			}
			return translate(err, "reservation", reservationID)
		}

		if freed, err = tx.Table(ctx, tableID); err != nil {
			return err
		}
		r.Status = model.StatusFinished
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("finished reservation %d, table %d is free", res.ID, tableID)
	notify(ctx, s.events, s.logger, queue.NewSeatingEvent(queue.EventTableFinished, res, freed))
	return freed, nil
}

// Cancel moves a booked reservation to cancelled.  Seated and finished
// reservations cannot be cancelled.
func (s *Seating) Cancel(ctx context.Context, reservationID uint64) (*model.Reservation, error) {
	ctx = context.WithoutCancel(ctx)

	var res *model.Reservation
	err := s.store.InTx(ctx, func(tx repository.SeatingTx) error {
		r, err := tx.Reservation(ctx, reservationID)
		if err != nil {
			return translate(err, "reservation", reservationID)
		}
		if err := booking.CheckTransition(r, model.StatusCancelled); err != nil {
			return err
		}
		if err := tx.SetStatus(ctx, reservationID, model.StatusBooked, model.StatusCancelled); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return booking.Conflict("reservation", reservationID, "reservation is no longer booked")
			}
			return translate(err, "reservation", reservationID)
		}
		if res, err = tx.Reservation(ctx, reservationID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Infof("cancelled reservation %d", reservationID)
	notify(ctx, s.events, s.logger, queue.NewSeatingEvent(queue.EventReservationCancelled, res, nil))
	return res, nil
}

func tableOccupied(id uint64) error {
	return booking.Conflict("table", id, fmt.Sprintf("table %d is occupied", id))
}

func tableNotOccupied(id uint64) error {
	return booking.InvalidState("table", id, fmt.Sprintf("table %d is not occupied", id))
}
