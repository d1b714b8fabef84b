package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/restaurant-table-reservation/internal/model"
	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

// StaffRepo persists front-of-house accounts in staff_users.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// Create hashes password, inserts the account and returns its ID.
func (r *StaffRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = normalizeEmail(email)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff_users (email, password_hash, role) VALUES (?,?,?)",
		email, hash, role)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// EnsureAccount creates the account unless the email is already taken.
// It reports whether a row was inserted; an existing account is left
// unchanged.
func (r *StaffRepo) EnsureAccount(ctx context.Context, email, password, role string, cost int) (bool, error) {
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, ErrStaffNotFound) {
		return false, err
	}
	if _, err := r.Create(ctx, email, password, role, cost); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

const staffColumns = "id,email,password_hash,role,is_active,created_at,updated_at"

// GetByEmail fetches an account by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.StaffUser, error) {
	return r.get(ctx, "SELECT "+staffColumns+" FROM staff_users WHERE email=? LIMIT 1", normalizeEmail(email))
}

// GetByID fetches an account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (model.StaffUser, error) {
	return r.get(ctx, "SELECT "+staffColumns+" FROM staff_users WHERE id=? LIMIT 1", id)
}

func (r *StaffRepo) get(ctx context.Context, q string, arg any) (model.StaffUser, error) {
	var u model.StaffUser
	err := r.DB.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrStaffNotFound
	}
	return u, err
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
