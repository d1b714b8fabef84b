package handler // package handler contains the HTTP handlers of the API

import (
    "context"
    "database/sql"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
)

// Health reports liveness for load balancers.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Ready pings the database and reports 503 when it is unreachable.
func Ready(db *sql.DB) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        if err := db.PingContext(ctx); err != nil {
            c.Logger().Warnf("readiness: %v", err)
            return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
        }
        return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
    }
}
