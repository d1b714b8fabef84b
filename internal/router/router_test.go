package router

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-table-reservation/internal/booking"
	"github.com/iliyamo/restaurant-table-reservation/internal/config"
	"github.com/iliyamo/restaurant-table-reservation/internal/database/sqlitetest"
	"github.com/iliyamo/restaurant-table-reservation/internal/handler"
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/service"
	"github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

const secret = "router-secret"

func newServer(t *testing.T) *echo.Echo {
	t.Helper()
	db := sqlitetest.Open(t)
	logger := log.New("test")
	logger.SetOutput(io.Discard)

	resRepo := repository.NewReservationRepo(db)
	tableRepo := repository.NewTableRepo(db)
	policy := booking.Policy{
		Now:      func() time.Time { return time.Date(2023, 12, 1, 12, 0, 0, 0, time.UTC) },
		Location: time.UTC,
	}
	seating := service.NewSeating(repository.NewSeatingStore(db, resRepo, tableRepo), nil, logger)
	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}

	e := echo.New()
	e.Logger = logger
	RegisterRoutes(e, db)
	RegisterV1(e, Deps{
		JWTSecret:    secret,
		Auth:         handler.NewAuthHandler(cfg, repository.NewStaffRepo(db), repository.NewTokenRepo(db)),
		Reservations: handler.NewReservationHandler(service.NewReservations(resRepo, policy, nil, logger), seating),
		Tables:       handler.NewTableHandler(service.NewTables(tableRepo), seating),
	})
	return e
}

func send(e *echo.Echo, method, target, body, role string) int {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if role != "" {
		tok, _ := utils.NewAccessToken(secret, 1, role, 5)
		req.Header.Set("Authorization", "Bearer "+tok.Token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec.Code
}

func TestHealthEndpoints(t *testing.T) {
	e := newServer(t)
	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/healthz", "", ""))
	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/readyz", "", ""))
}

func TestAccessRules(t *testing.T) {
	e := newServer(t)
	table := `{"table_name":"Bar 1","capacity":2}`

	assert.Equal(t, http.StatusUnauthorized, send(e, http.MethodPost, "/v1/tables", table, ""))
	assert.Equal(t, http.StatusForbidden, send(e, http.MethodPost, "/v1/tables", table, "HOST"))
	assert.Equal(t, http.StatusForbidden, send(e, http.MethodGet, "/v1/tables", "", "GUEST"))
	require.Equal(t, http.StatusCreated, send(e, http.MethodPost, "/v1/tables", table, "MANAGER"))

	assert.Equal(t, http.StatusUnauthorized, send(e, http.MethodGet, "/v1/tables", "", ""))
	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/v1/tables", "", "HOST"))
	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/v1/me", "", "HOST"))

	guest := `{"first_name":"Ada","last_name":"Byron","mobile_number":"555 0100",
		"reservation_date":"2024-01-03","reservation_time":"18:00","people":2}`
	assert.Equal(t, http.StatusCreated, send(e, http.MethodPost, "/v1/reservations", guest, ""))
	assert.Equal(t, http.StatusUnauthorized, send(e, http.MethodGet, "/v1/reservations?date=2024-01-03", "", ""))
	assert.Equal(t, http.StatusOK, send(e, http.MethodGet, "/v1/reservations?date=2024-01-03", "", "HOST"))
	assert.Equal(t, http.StatusOK, send(e, http.MethodPut, "/v1/tables/1/seat", `{"reservation_id":1}`, "HOST"))
}

func TestSelfRegistrationCannotCreateManager(t *testing.T) {
	e := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"email":"sneaky@example.com","password":"hunter2hunter2","role":"MANAGER"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		User struct {
			Role string `json:"role"`
		} `json:"user"`
		Access struct {
			Token string `json:"token"`
		} `json:"access"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "HOST", out.User.Role)

	// The issued token cannot reach manager routes.
	req = httptest.NewRequest(http.MethodPost, "/v1/tables", strings.NewReader(`{"table_name":"Bar 1","capacity":2}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+out.Access.Token)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	staff := `{"email":"second@example.com","password":"hunter2hunter2","role":"MANAGER"}`
	assert.Equal(t, http.StatusUnauthorized, send(e, http.MethodPost, "/v1/staff", staff, ""))
	assert.Equal(t, http.StatusForbidden, send(e, http.MethodPost, "/v1/staff", staff, "HOST"))
	assert.Equal(t, http.StatusCreated, send(e, http.MethodPost, "/v1/staff", staff, "MANAGER"))
}
