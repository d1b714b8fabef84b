package handler

import (
	"encoding/json"
	"fmt"
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
	"github.com/iliyamo/restaurant-table-reservation/internal/repository"
	"github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// newAPI wires handlers over a private SQLite database.  The clock is
// fixed at Friday 2023-12-01 12:00 UTC.
func newAPI(t *testing.T) *echo.Echo {
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
	reservations := service.NewReservations(resRepo, policy, nil, logger)
	tables := service.NewTables(tableRepo)
	seating := service.NewSeating(repository.NewSeatingStore(db, resRepo, tableRepo), nil, logger)

	rh := NewReservationHandler(reservations, seating)
	th := NewTableHandler(tables, seating)
	ah := NewAuthHandler(config.Config{
		JWTSecret:      "test-secret",
		AccessTTLMin:   5,
		RefreshTTLDays: 1,
		BcryptCost:     4,
	}, repository.NewStaffRepo(db), repository.NewTokenRepo(db))

	e := echo.New()
	e.Logger = logger
	e.POST("/v1/reservations", rh.Create)
	e.GET("/v1/reservations", rh.List)
	e.GET("/v1/reservations/:id", rh.Get)
	e.PUT("/v1/reservations/:id", rh.Update)
	e.PUT("/v1/reservations/:id/status", rh.UpdateStatus)
	e.POST("/v1/staff", ah.CreateStaff)
	e.POST("/v1/tables", th.Create)
	e.GET("/v1/tables", th.List)
	e.GET("/v1/tables/:id", th.Get)
	e.PUT("/v1/tables/:id/seat", th.Seat)
	e.DELETE("/v1/tables/:id/seat", th.Finish)
	e.POST("/v1/auth/register", ah.Register)
	e.POST("/v1/auth/login", ah.Login)
	e.POST("/v1/auth/refresh", ah.Refresh)
	e.POST("/v1/auth/logout", ah.Logout)
	return e
}

func do(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

const guestBody = `{
	"first_name": "Rick",
	"last_name": "Sanchez",
	"mobile_number": "202-555-0164",
	"reservation_date": "2024-01-03",
	"reservation_time": "13:30",
	"people": %d
}`

func createReservation(t *testing.T, e *echo.Echo, people int) uint64 {
	t.Helper()
	rec := do(e, http.MethodPost, "/v1/reservations", fmt.Sprintf(guestBody, people))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	assert.Equal(t, "booked", item["status"])
	return uint64(item["reservation_id"].(float64))
}

func createTable(t *testing.T, e *echo.Echo, name string, capacity int) uint64 {
	t.Helper()
	rec := do(e, http.MethodPost, "/v1/tables", fmt.Sprintf(`{"table_name":%q,"capacity":%d}`, name, capacity))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	assert.Nil(t, item["reservation_id"])
	return uint64(item["table_id"].(float64))
}

func TestCreateReservationValidation(t *testing.T) {
	e := newAPI(t)

	rec := do(e, http.MethodPost, "/v1/reservations", `{
		"first_name": "Rick",
		"mobile_number": "202-555-0164",
		"reservation_date": "2023-12-05",
		"reservation_time": "09:00",
		"people": 0
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	violations := body["violations"].([]any)

	var messages []string
	for _, v := range violations {
		messages = append(messages, v.(map[string]any)["message"].(string))
	}
	assert.Contains(t, messages, "last_name is required")
	assert.Contains(t, messages, "people must be a whole number greater than or equal to 1")
	assert.Contains(t, messages, "restaurant is closed on Tuesdays")
	assert.Contains(t, messages, "restaurant opens after 10:30am")

	rec = do(e, http.MethodPost, "/v1/reservations", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeatAndFinishOverHTTP(t *testing.T) {
	e := newAPI(t)
	id := createReservation(t, e, 3)
	table := createTable(t, e, "Patio 1", 4)

	seat := fmt.Sprintf(`{"reservation_id":%d}`, id)
	rec := do(e, http.MethodPut, fmt.Sprintf("/v1/tables/%d/seat", table), seat)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	assert.Equal(t, float64(id), item["reservation_id"])

	rec = do(e, http.MethodPut, fmt.Sprintf("/v1/tables/%d/seat", table), seat)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodDelete, fmt.Sprintf("/v1/tables/%d/seat", table), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, decode(t, rec)["item"].(map[string]any)["reservation_id"])

	rec = do(e, http.MethodDelete, fmt.Sprintf("/v1/tables/%d/seat", table), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, fmt.Sprintf("table %d is not occupied", table), decode(t, rec)["error"])

	rec = do(e, http.MethodGet, fmt.Sprintf("/v1/reservations/%d", id), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "finished", decode(t, rec)["item"].(map[string]any)["status"])
}

func TestSeatErrors(t *testing.T) {
	e := newAPI(t)
	id := createReservation(t, e, 6)
	small := createTable(t, e, "Bar 1", 2)

	rec := do(e, http.MethodPut, fmt.Sprintf("/v1/tables/%d/seat", small), fmt.Sprintf(`{"reservation_id":%d}`, id))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "too many guests (6) for table size (2)", decode(t, rec)["error"])

	rec = do(e, http.MethodPut, "/v1/tables/999/seat", fmt.Sprintf(`{"reservation_id":%d}`, id))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "table 999 not found", decode(t, rec)["error"])

	rec = do(e, http.MethodPut, fmt.Sprintf("/v1/tables/%d/seat", small), `{"reservation_id":999}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPut, fmt.Sprintf("/v1/tables/%d/seat", small), `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, "/v1/tables/abc/seat", `{"reservation_id":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus(t *testing.T) {
	e := newAPI(t)
	id := createReservation(t, e, 2)
	target := fmt.Sprintf("/v1/reservations/%d/status", id)

	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPut, target, `{"status":"eaten"}`).Code)
	assert.Equal(t, http.StatusConflict, do(e, http.MethodPut, target, `{"status":"seated"}`).Code)

	rec := do(e, http.MethodPut, target, `{"status":"cancelled"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "cancelled", decode(t, rec)["item"].(map[string]any)["status"])

	rec = do(e, http.MethodPut, target, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodPut, "/v1/reservations/999/status", `{"status":"cancelled"}`).Code)
}

func TestUpdateReservation(t *testing.T) {
	e := newAPI(t)
	id := createReservation(t, e, 2)

	edited := strings.Replace(fmt.Sprintf(guestBody, 5), "13:30", "19:00", 1)
	rec := do(e, http.MethodPut, fmt.Sprintf("/v1/reservations/%d", id), edited)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	assert.Equal(t, "19:00", item["reservation_time"])
	assert.Equal(t, float64(5), item["people"])

	rec = do(e, http.MethodPut, "/v1/reservations/999", edited)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAndSearch(t *testing.T) {
	e := newAPI(t)
	createReservation(t, e, 2)
	createReservation(t, e, 4)

	rec := do(e, http.MethodGet, "/v1/reservations?date=2024-01-03", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = do(e, http.MethodGet, "/v1/reservations?date=2024-01-04", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["items"])

	rec = do(e, http.MethodGet, "/v1/reservations?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodGet, "/v1/reservations?mobile_number=(202)%20555", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["items"], 2)

	rec = do(e, http.MethodGet, "/v1/reservations?mobile_number=999", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["items"])

	rec = do(e, http.MethodGet, "/v1/reservations?mobile_number=", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTables(t *testing.T) {
	e := newAPI(t)
	createTable(t, e, "Bar 2", 1)
	createTable(t, e, "Bar 1", 1)

	rec := do(e, http.MethodGet, "/v1/tables", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode(t, rec)["items"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "Bar 1", items[0].(map[string]any)["table_name"])

	rec = do(e, http.MethodPost, "/v1/tables", `{"table_name":"B","capacity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode(t, rec)["violations"], 2)

	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/v1/tables/42", "").Code)
}

func TestAuthFlow(t *testing.T) {
	e := newAPI(t)

	rec := do(e, http.MethodPost, "/v1/auth/register", `{"email":"Host@Example.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/auth/register", `{"email":"Host@Example.com","password":"hunter2hunter2","role":"manager"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	user := decode(t, rec)["user"].(map[string]any)
	assert.Equal(t, "host@example.com", user["email"])
	assert.Equal(t, "HOST", user["role"], "sign-up ignores the requested role")

	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"host@example.com","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"host@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	refresh := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	body := fmt.Sprintf(`{"refresh_token":%q}`, refresh)
	rec = do(e, http.MethodPost, "/v1/auth/refresh", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	// The rotated-out token is revoked.
	assert.Equal(t, http.StatusUnauthorized, do(e, http.MethodPost, "/v1/auth/refresh", body).Code)

	rec = do(e, http.MethodPost, "/v1/auth/logout", fmt.Sprintf(`{"refresh_token":%q}`, rotated))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, http.StatusBadRequest, do(e, http.MethodPost, "/v1/auth/logout", `{}`).Code)
}

func TestCreateStaff(t *testing.T) {
	e := newAPI(t)

	rec := do(e, http.MethodPost, "/v1/staff", `{"email":"chef@example.com","password":"hunter2hunter2","role":"owner"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, "/v1/staff", `{"email":" Chef@Example.com ","password":"hunter2hunter2","role":"manager"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	item := decode(t, rec)["item"].(map[string]any)
	assert.Equal(t, "chef@example.com", item["email"])
	assert.Equal(t, "MANAGER", item["role"])

	rec = do(e, http.MethodPost, "/v1/auth/login", `{"email":"chef@example.com","password":"hunter2hunter2"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "MANAGER", decode(t, rec)["user"].(map[string]any)["role"])
}
