// Package service implements the restaurant's operations on top of the
// booking rules and the persistence layer: taking and editing
// reservations, maintaining the table registry, and seating and
// releasing parties.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// ReservationStore persists reservations.
type ReservationStore interface {
	Create(ctx context.Context, r *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	UpdateFields(ctx context.Context, r *model.Reservation) error
	ListByDate(ctx context.Context, date string, exclude model.Status) ([]model.Reservation, error)
	SearchByPhoneDigits(ctx context.Context, digits string) ([]model.Reservation, error)
}

// TableStore persists the table registry.
type TableStore interface {
	Create(ctx context.Context, t *model.Table) error
	GetByID(ctx context.Context, id uint64) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
}

// SeatingStore runs fn in one transaction.  Returning an error from fn
// rolls back every write made through tx.
type SeatingStore interface {
	InTx(ctx context.Context, fn func(tx repository.SeatingTx) error) error
}

// EventPublisher receives an event after each committed change.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SeatingEvent) error
}

const publishTimeout = 3 * time.Second

// notify publishes ev when a publisher is configured.  Failures are
// logged only; the change they describe is already committed.
func notify(ctx context.Context, p EventPublisher, logger *log.Logger, ev queue.SeatingEvent) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.Publish(ctx, ev); err != nil && logger != nil {
		logger.Warnf("publish %s for reservation %d: %v", ev.Type, ev.ReservationID, err)
	}
}

// translate maps repository sentinels onto booking errors for the record
// that was being looked up.  Other errors pass through unchanged.
func translate(err error, resource string, id uint64) error {
	switch {
	case errors.Is(err, repository.ErrReservationNotFound), errors.Is(err, repository.ErrTableNotFound):
		return booking.NotFound(resource, id)
	}
	return err
}
