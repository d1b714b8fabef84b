package service

import (
	"context"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// Tables maintains the table registry.  New tables start free; occupancy
// is managed by Seating.
type Tables struct {
	store TableStore
}

func NewTables(store TableStore) *Tables { return &Tables{store: store} }

// Create validates in and registers a free table.
func (s *Tables) Create(ctx context.Context, in booking.TableInput) (*model.Table, error) {
	if err := booking.ValidateTable(&in); err != nil {
		return nil, err
	}
	t := model.Table{TableName: in.TableName, Capacity: in.Capacity}
	if err := s.store.Create(ctx, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Tables) List(ctx context.Context) ([]model.Table, error) {
	return s.store.List(ctx)
}

func (s *Tables) Get(ctx context.Context, id uint64) (*model.Table, error) {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "table", id)
	}
	return t, nil
}
