package booking

import (
	"fmt"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// transitions lists the permitted next states for each status.  Finished
// and cancelled have no entry and are therefore terminal.
var transitions = map[model.Status][]model.Status{
	model.StatusBooked: {model.StatusSeated, model.StatusCancelled},
	model.StatusSeated: {model.StatusFinished},
}

// CanTransition reports whether a reservation may move from one status to
// another.
func CanTransition(from, to model.Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a conflict error naming the reservation's
// current status when r may not move to the requested status.
func CheckTransition(r *model.Reservation, to model.Status) error {
	if CanTransition(r.Status, to) {
		return nil
	}
	var msg string
	switch {
	case r.Status == to:
		msg = fmt.Sprintf("reservation is already %s", r.Status)
	case r.Status.Terminal():
		msg = fmt.Sprintf("reservation is %s and can no longer change", r.Status)
	default:
		msg = fmt.Sprintf("reservation is %s and cannot be %s", r.Status, to)
	}
	return Conflict("reservation", r.ID, msg)
}
