package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// TableRepo provides persistence for restaurant tables.  Occupancy is only
// changed through OccupyTx and ReleaseTx, both conditional updates meant
// to run inside the seating transaction.
type TableRepo struct {
    db *sql.DB
}

// NewTableRepo returns a new TableRepo bound to the given database.
func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{db: db} }

const tableColumns = `table_id, table_name, capacity, reservation_id, created_at, updated_at`

func scanTable(s rowScanner) (*model.Table, error) {
    var (
        t     model.Table
        resID sql.NullInt64
    )
    if err := s.Scan(&t.ID, &t.TableName, &t.Capacity, &resID, &t.CreatedAt, &t.UpdatedAt); err != nil {
        return nil, err
    }
    if resID.Valid {
        id := uint64(resID.Int64)
        t.ReservationID = &id
    }
    return &t, nil
}

// Create inserts a free table and fills in the generated ID and timestamps.
func (r *TableRepo) Create(ctx context.Context, t *model.Table) error {
    result, err := r.db.ExecContext(ctx,
        `INSERT INTO restaurant_tables (table_name, capacity) VALUES (?, ?)`, t.TableName, t.Capacity)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    stored, err := getTable(ctx, r.db, uint64(id))
    if err != nil {
        return err
    }
    *t = *stored
    return nil
}

// GetByID returns the table or ErrTableNotFound.
func (r *TableRepo) GetByID(ctx context.Context, id uint64) (*model.Table, error) {
    return getTable(ctx, r.db, id)
}

// GetByIDTx is GetByID inside an open transaction.
func (r *TableRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Table, error) {
    return getTable(ctx, tx, id)
}

func getTable(ctx context.Context, q querier, id uint64) (*model.Table, error) {
    row := q.QueryRowContext(ctx, `SELECT `+tableColumns+` FROM restaurant_tables WHERE table_id = ?`, id)
    t, err := scanTable(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrTableNotFound
        }
        return nil, err
    }
    return t, nil
}

// List returns every table ordered by name.
func (r *TableRepo) List(ctx context.Context) ([]model.Table, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+tableColumns+` FROM restaurant_tables ORDER BY table_name ASC, table_id ASC`)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Table, 0)
    for rows.Next() {
        t, err := scanTable(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *t)
    }
    return out, rows.Err()
}

// OccupyTx binds reservationID to a free table large enough for people.
// It returns ErrConflict when the table is taken or too small at the
// moment of the update.
func (r *TableRepo) OccupyTx(ctx context.Context, tx *sql.Tx, tableID, reservationID uint64, people int) error {
    const q = `UPDATE restaurant_tables SET reservation_id = ?, updated_at = CURRENT_TIMESTAMP
        WHERE table_id = ? AND reservation_id IS NULL AND capacity >= ?`
    return expectOneRow(ctx, tx, tableID, q, reservationID, tableID, people)
}

// ReleaseTx frees a table only while it still holds reservationID.
func (r *TableRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, tableID, reservationID uint64) error {
    const q = `UPDATE restaurant_tables SET reservation_id = NULL, updated_at = CURRENT_TIMESTAMP
        WHERE table_id = ? AND reservation_id = ?`
    return expectOneRow(ctx, tx, tableID, q, tableID, reservationID)
}

func expectOneRow(ctx context.Context, q querier, tableID uint64, stmt string, args ...any) error {
    result, err := q.ExecContext(ctx, stmt, args...)
    if err != nil {
        return err
    }
    if n, _ := result.RowsAffected(); n > 0 {
        return nil
    }
    if _, err := getTable(ctx, q, tableID); err != nil {
        return err
    }
    return ErrConflict
}
