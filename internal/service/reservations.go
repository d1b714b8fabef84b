package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/queue"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
)

// Reservations takes, edits and looks up reservations.  Every create and
// edit runs the full field and time-policy validation first.
type Reservations struct {
	store  ReservationStore
	policy booking.Policy
	events EventPublisher
	logger *log.Logger
}

// NewReservations builds the service.  events may be nil.
func NewReservations(store ReservationStore, policy booking.Policy, events EventPublisher, logger *log.Logger) *Reservations {
	if logger == nil {
		logger = log.New("reservations")
	}
	return &Reservations{store: store, policy: policy, events: events, logger: logger}
}

// Create validates in and stores a new booked reservation.
func (s *Reservations) Create(ctx context.Context, in booking.ReservationInput) (*model.Reservation, error) {
	if err := booking.ValidateReservation(s.policy, &in); err != nil {
		return nil, err
	}
	var r model.Reservation
	in.Apply(&r)
	if err := s.store.Create(ctx, &r); err != nil {
		return nil, err
	}
	s.logger.Infof("booked reservation %d for %s %s", r.ID, r.ReservationDate, r.ReservationTime)
	notify(ctx, s.events, s.logger, queue.NewSeatingEvent(queue.EventReservationCreated, &r, nil))
	return &r, nil
}

// Get returns one reservation.
func (s *Reservations) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "reservation", id)
	}
	return r, nil
}

// Update replaces the editable fields of a booked reservation.
func (s *Reservations) Update(ctx context.Context, id uint64, in booking.ReservationInput) (*model.Reservation, error) {
	r, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "reservation", id)
	}
	if r.Status != model.StatusBooked {
		return nil, notEditable(r)
	}
	if err := booking.ValidateReservation(s.policy, &in); err != nil {
		return nil, err
	}
	in.Apply(r)
	if err := s.store.UpdateFields(ctx, r); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, booking.Conflict("reservation", id, "reservation is no longer booked")
		}
		return nil, translate(err, "reservation", id)
	}
	return s.Get(ctx, id)
}

// ListByDate returns the date's reservations by time, without finished
// ones.
func (s *Reservations) ListByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	if _, err := time.Parse(booking.DateLayout, date); err != nil {
		return nil, booking.Violations{{
			Field:   "date",
			Rule:    booking.RuleFormat,
			Message: "date must be a date in YYYY-MM-DD format",
		}}.Err()
	}
	return s.store.ListByDate(ctx, date, model.StatusFinished)
}

// SearchByPhone returns reservations whose number contains the digits of
// query, in any formatting, oldest date first.
func (s *Reservations) SearchByPhone(ctx context.Context, query string) ([]model.Reservation, error) {
	digits := booking.NormalizePhone(query)
	if digits == "" {
		return nil, booking.Violations{{
			Field:   "mobile_number",
			Rule:    booking.RuleRequired,
			Message: "mobile_number must contain at least one digit",
		}}.Err()
	}
	return s.store.SearchByPhoneDigits(ctx, digits)
}

func notEditable(r *model.Reservation) error {
	return booking.Conflict("reservation", r.ID,
		fmt.Sprintf("reservation is %s; only booked reservations can be edited", r.Status))
}
