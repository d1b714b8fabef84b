package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// ReservationHandler exposes reservations under /v1/reservations.
type ReservationHandler struct {
    Reservations *service.Reservations
    Seating      *service.Seating
}

func NewReservationHandler(r *service.Reservations, s *service.Seating) *ReservationHandler {
    if r == nil || s == nil {
        panic("nil service passed to NewReservationHandler")
    }
    return &ReservationHandler{Reservations: r, Seating: s}
}

type statusReq struct {
    Status string `json:"status"`
}

// Create books a new reservation.  POST /v1/reservations
func (h *ReservationHandler) Create(c echo.Context) error {
    var in booking.ReservationInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    r, err := h.Reservations.Create(c.Request().Context(), in)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": r})
}

// Get returns one reservation.  GET /v1/reservations/:id
func (h *ReservationHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "reservation")
    }
    r, err := h.Reservations.Get(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": r})
}

// Update edits a booked reservation.  PUT /v1/reservations/:id
func (h *ReservationHandler) Update(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "reservation")
    }
    var in booking.ReservationInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    r, err := h.Reservations.Update(c.Request().Context(), id, in)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": r})
}

// List answers GET /v1/reservations?mobile_number=... with a phone search
// and GET /v1/reservations?date=YYYY-MM-DD with the day's reservations.
func (h *ReservationHandler) List(c echo.Context) error {
    ctx := c.Request().Context()
    var (
        items []model.Reservation
        err   error
    )
    if q, ok := c.QueryParams()["mobile_number"]; ok {
        items, err = h.Reservations.SearchByPhone(ctx, strings.Join(q, ""))
    } else {
        items, err = h.Reservations.ListByDate(ctx, strings.TrimSpace(c.QueryParam("date")))
    }
    if err != nil {
        return respondError(c, err)
    }
    if items == nil {
        items = []model.Reservation{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateStatus accepts only {"status":"cancelled"}.  Seated and finished
// are reached through the table seat endpoints.  PUT /v1/reservations/:id/status
func (h *ReservationHandler) UpdateStatus(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "reservation")
    }
    var req statusReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    status := model.Status(strings.ToLower(strings.TrimSpace(req.Status)))
    switch {
    case status == model.StatusCancelled:
    case !status.Valid():
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status " + string(status)})
    default:
        return c.JSON(http.StatusConflict, echo.Map{
            "error": "status " + string(status) + " is set by seating, not directly",
        })
    }
    r, err := h.Seating.Cancel(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": r})
}
