package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/service"
)

// TableHandler exposes the table registry and seating under /v1/tables.
type TableHandler struct {
    Tables  *service.Tables
    Seating *service.Seating
}

func NewTableHandler(t *service.Tables, s *service.Seating) *TableHandler {
    if t == nil || s == nil {
        panic("nil service passed to NewTableHandler")
    }
    return &TableHandler{Tables: t, Seating: s}
}

type seatReq struct {
    ReservationID uint64 `json:"reservation_id"`
}

// Create registers a table.  POST /v1/tables
func (h *TableHandler) Create(c echo.Context) error {
    var in booking.TableInput
    if err := c.Bind(&in); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    t, err := h.Tables.Create(c.Request().Context(), in)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": t})
}

// List returns every table by name.  GET /v1/tables
func (h *TableHandler) List(c echo.Context) error {
    items, err := h.Tables.List(c.Request().Context())
    if err != nil {
        return respondError(c, err)
    }
    if items == nil {
        items = []model.Table{}
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one table.  GET /v1/tables/:id
func (h *TableHandler) Get(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "table")
    }
    t, err := h.Tables.Get(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": t})
}

// Seat assigns a reservation to the table.  PUT /v1/tables/:id/seat
func (h *TableHandler) Seat(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "table")
    }
    var req seatReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if req.ReservationID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
    }
    t, err := h.Seating.Seat(c.Request().Context(), req.ReservationID, id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": t})
}

// Finish frees the table and finishes its reservation.  DELETE /v1/tables/:id/seat
func (h *TableHandler) Finish(c echo.Context) error {
    id, ok := parseID(c, "id")
    if !ok {
        return badID(c, "table")
    }
    t, err := h.Seating.Finish(c.Request().Context(), id)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"item": t})
}
