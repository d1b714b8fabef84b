package booking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

var allStatuses = []model.Status{
	model.StatusBooked,
	model.StatusSeated,
	model.StatusFinished,
	model.StatusCancelled,
}

func TestCanTransition(t *testing.T) {
	allowed := map[[2]model.Status]bool{
		{model.StatusBooked, model.StatusSeated}:    true,
		{model.StatusBooked, model.StatusCancelled}: true,
		{model.StatusSeated, model.StatusFinished}:  true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			assert.Equal(t, allowed[[2]model.Status{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestFinishedOnlyReachableThroughSeated(t *testing.T) {
	for _, from := range allStatuses {
		if from == model.StatusSeated {
			continue
		}
		assert.False(t, CanTransition(from, model.StatusFinished), from)
	}
}

func TestCheckTransitionConflicts(t *testing.T) {
	r := &model.Reservation{ID: 7, Status: model.StatusSeated}

	err := CheckTransition(r, model.StatusSeated)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "reservation is already seated", err.Error())

	err = CheckTransition(r, model.StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, "reservation is seated and cannot be cancelled", err.Error())

	r.Status = model.StatusFinished
	err = CheckTransition(r, model.StatusSeated)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finished")

	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, uint64(7), be.ID)
	assert.Equal(t, "reservation", be.Resource)
}

func TestCheckTransitionAllowed(t *testing.T) {
	r := &model.Reservation{ID: 1, Status: model.StatusBooked}
	assert.NoError(t, CheckTransition(r, model.StatusSeated))
	assert.NoError(t, CheckTransition(r, model.StatusCancelled))
}

func TestErrorKindsMatchOnlyTheirSentinel(t *testing.T) {
	err := NotFound("table", 3)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "table 3 not found", err.Error())

	assert.True(t, errors.Is(InvalidState("table", 3, "table is not occupied"), ErrInvalidState))
}
