package middleware

import (
    "strconv"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Subject reads the numeric sub claim.  JSON numbers decode as float64;
// a decimal string is accepted too.
func Subject(claims jwt.MapClaims) (uint64, bool) {
    switch v := claims["sub"].(type) {
    case float64:
        if v > 0 {
            return uint64(v), true
        }
    case string:
        if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
            return n, true
        }
    }
    return 0, false
}

// StaffID returns the authenticated staff member set by JWTAuth.
func StaffID(c echo.Context) (uint64, bool) {
    id, ok := c.Get(ContextStaffID).(uint64)
    return id, ok && id > 0
}

// requester names the caller for rate-limit keys: the staff ID, or
// "guest" for unauthenticated requests.
func requester(c echo.Context) string {
    if id, ok := StaffID(c); ok {
        return strconv.FormatUint(id, 10)
    }
    return "guest"
}
