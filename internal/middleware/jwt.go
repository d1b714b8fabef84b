package middleware // middleware provides shared request processing for the HTTP API

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ContextStaffID = "user_id"
    ContextRole    = "role"
)

// ParseAccessToken validates an HS256 token signed with secret and returns
// its claims.
func ParseAccessToken(raw, secret string) (jwt.MapClaims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    }, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    if err != nil || !tok.Valid {
        return nil, echo.ErrUnauthorized
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return nil, echo.ErrUnauthorized
    }
    return claims, nil
}

// JWTAuth validates the Bearer access token and stores the staff ID
// (uint64) and role (string) in the context under ContextStaffID and
// ContextRole.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := ParseAccessToken(strings.TrimPrefix(auth, "Bearer "), secret)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            id, ok := Subject(claims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }
            role, _ := claims["role"].(string)

            c.Set(ContextStaffID, id)
            c.Set(ContextRole, role)
            return next(c)
        }
    }
}
