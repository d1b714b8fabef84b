package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/booking"
)

// statusFor maps a booking error kind to its HTTP status.
func statusFor(k booking.Kind) int {
    switch k {
    case booking.KindNotFound:
        return http.StatusNotFound
    case booking.KindConflict:
        return http.StatusConflict
    default: // validation, invalid state
        return http.StatusBadRequest
    }
}

// respondError writes err as {"error": ...}.  Validation failures also
// carry the individual violations.  Anything that is not a booking error
// is logged and reported as 500 without detail.
func respondError(c echo.Context, err error) error {
    var be *booking.Error
    if !errors.As(err, &be) {
        c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
    }
    body := echo.Map{"error": be.Message}
    if len(be.Violations) > 0 {
        body["violations"] = be.Violations
    }
    return c.JSON(statusFor(be.Kind), body)
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    return id, err == nil && id > 0
}

func badID(c echo.Context, what string) error {
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid " + what + " id"})
}
