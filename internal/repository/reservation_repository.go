package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
)

// querier is satisfied by both *sql.DB and *sql.Tx so read and write
// helpers can run inside or outside a transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
    Scan(dest ...any) error
}

// ReservationRepo provides persistence for reservations.  Alongside the
// number as entered, every row stores mobile_digits, the digits-only form
// used by phone search.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `reservation_id, first_name, last_name, mobile_number, reservation_date,
    reservation_time, people, status, created_at, updated_at`

func scanReservation(s rowScanner) (*model.Reservation, error) {
    var (
        res   model.Reservation
        date  time.Time
        clock string
    )
    if err := s.Scan(&res.ID, &res.FirstName, &res.LastName, &res.MobileNumber, &date,
        &clock, &res.People, &res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
        return nil, err
    }
    res.ReservationDate = date.Format(booking.DateLayout)
    res.ReservationTime = clockOf(clock)
    return &res, nil
}

// clockOf trims a TIME column ("18:00:00" from MySQL) to HH:MM.
func clockOf(s string) string {
    if len(s) > 5 {
        return s[:5]
    }
    return s
}

// Create inserts res with status booked and fills in the generated ID and
// timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations
        (first_name, last_name, mobile_number, mobile_digits, reservation_date, reservation_time, people, status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res.Status = model.StatusBooked
    result, err := r.db.ExecContext(ctx, q,
        res.FirstName, res.LastName, res.MobileNumber, booking.NormalizePhone(res.MobileNumber),
        res.ReservationDate, res.ReservationTime, res.People, string(res.Status))
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    // Query back the full row to populate timestamps and defaults
    stored, err := getReservation(ctx, r.db, uint64(id))
    if err != nil {
        return err
    }
    *res = *stored
    return nil
}

// GetByID returns the reservation or ErrReservationNotFound.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    return getReservation(ctx, r.db, id)
}

// GetByIDTx is GetByID inside an open transaction.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Reservation, error) {
    return getReservation(ctx, tx, id)
}

func getReservation(ctx context.Context, q querier, id uint64) (*model.Reservation, error) {
    row := q.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE reservation_id = ?`, id)
    res, err := scanReservation(row)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return nil, ErrReservationNotFound
        }
        return nil, err
    }
    return res, nil
}

// UpdateFields rewrites the guest-editable columns of a booked
// reservation.  It returns ErrConflict when the reservation has left the
// booked state.
func (r *ReservationRepo) UpdateFields(ctx context.Context, res *model.Reservation) error {
    const q = `UPDATE reservations
        SET first_name = ?, last_name = ?, mobile_number = ?, mobile_digits = ?,
            reservation_date = ?, reservation_time = ?, people = ?, updated_at = CURRENT_TIMESTAMP
        WHERE reservation_id = ? AND status = ?`
    result, err := r.db.ExecContext(ctx, q,
        res.FirstName, res.LastName, res.MobileNumber, booking.NormalizePhone(res.MobileNumber),
        res.ReservationDate, res.ReservationTime, res.People, res.ID, string(model.StatusBooked))
    if err != nil {
        return err
    }
    if n, _ := result.RowsAffected(); n > 0 {
        return nil
    }
    // MySQL reports zero affected rows when nothing changed, so look at
    // the row before calling it a conflict.
    return expectStatus(ctx, r.db, res.ID, model.StatusBooked)
}

// UpdateStatus moves a reservation from one status to another with a
// conditional update.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, id uint64, from, to model.Status) error {
    return updateStatus(ctx, r.db, id, from, to)
}

// UpdateStatusTx is UpdateStatus inside an open transaction.
func (r *ReservationRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, from, to model.Status) error {
    return updateStatus(ctx, tx, id, from, to)
}

func updateStatus(ctx context.Context, q querier, id uint64, from, to model.Status) error {
    const stmt = `UPDATE reservations SET status = ?, updated_at = CURRENT_TIMESTAMP
        WHERE reservation_id = ? AND status = ?`
    result, err := q.ExecContext(ctx, stmt, string(to), id, string(from))
    if err != nil {
        return err
    }
    if n, _ := result.RowsAffected(); n > 0 {
        return nil
    }
    if err := expectStatus(ctx, q, id, from); err != nil {
        return err
    }
    return ErrConflict
}

// expectStatus returns ErrReservationNotFound or ErrConflict unless the
// reservation exists with the given status.
func expectStatus(ctx context.Context, q querier, id uint64, want model.Status) error {
    var status model.Status
    err := q.QueryRowContext(ctx, `SELECT status FROM reservations WHERE reservation_id = ?`, id).Scan(&status)
    if errors.Is(err, sql.ErrNoRows) {
        return ErrReservationNotFound
    }
    if err != nil {
        return err
    }
    if status != want {
        return ErrConflict
    }
    return nil
}

// ListByDate returns the reservations on date ordered by time, leaving out
// those with the excluded status.
func (r *ReservationRepo) ListByDate(ctx context.Context, date string, exclude model.Status) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
        WHERE reservation_date = ? AND status <> ?
        ORDER BY reservation_time ASC, reservation_id ASC`
    return r.list(ctx, q, date, string(exclude))
}

// SearchByPhoneDigits returns reservations whose stored digits contain
// digits, oldest date first.
func (r *ReservationRepo) SearchByPhoneDigits(ctx context.Context, digits string) ([]model.Reservation, error) {
    const q = `SELECT ` + reservationColumns + ` FROM reservations
        WHERE mobile_digits LIKE ?
        ORDER BY reservation_date ASC, reservation_time ASC, reservation_id ASC`
    return r.list(ctx, q, "%"+digits+"%")
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    return out, rows.Err()
}
