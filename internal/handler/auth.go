package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/restaurant-table-reservation/internal/config"
    "github.com/iliyamo/restaurant-table-reservation/internal/middleware"
    "github.com/iliyamo/restaurant-table-reservation/internal/model"
    "github.com/iliyamo/restaurant-table-reservation/internal/repository"
    "github.com/iliyamo/restaurant-table-reservation/internal/utils"
)

const authTimeout = 5 * time.Second

// AuthHandler serves staff registration, login and token rotation.
type AuthHandler struct {
    Cfg    config.Config
    Staff  *repository.StaffRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, s *repository.StaffRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Staff: s, Tokens: t}
}

type registerReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type createStaffReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
    Role     string `json:"role"` // HOST | MANAGER
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type staffPart struct {
    ID    uint64 `json:"id"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    staffPart `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// parseRole accepts HOST or MANAGER in any case; empty means HOST.
func parseRole(s string) (string, bool) {
    switch strings.ToUpper(strings.TrimSpace(s)) {
    case "", model.RoleHost:
        return model.RoleHost, true
    case model.RoleManager:
        return model.RoleManager, true
    }
    return "", false
}

// checkCredentials normalizes email and applies the password policy.
// It returns the message for a 400 response, or "".
func checkCredentials(email *string, password string) string {
    *email = strings.ToLower(strings.TrimSpace(*email))
    if *email == "" || password == "" {
        return "email/password required"
    }
    if err := utils.CheckPassword(password); err != nil {
        return err.Error()
    }
    return ""
}

// createFailed writes the response for a failed StaffRepo.Create.
func createFailed(c echo.Context, err error) error {
    if errors.Is(err, repository.ErrEmailExists) {
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
    }
    c.Logger().Errorf("create staff: %v", err)
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create staff failed"})
}

// issue signs an access token, stores a fresh refresh token and writes
// both with status.
func (h *AuthHandler) issue(ctx context.Context, c echo.Context, status int, u staffPart) error {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        c.Logger().Errorf("store refresh for staff %d: %v", u.ID, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
    }
    return c.JSON(status, authResp{
        User:    u,
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    })
}

// Register is open sign-up.  It always creates a HOST account and
// returns a token pair; managers are created through CreateStaff or the
// bootstrap account.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := checkCredentials(&req.Email, req.Password); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    id, err := h.Staff.Create(ctx, req.Email, req.Password, model.RoleHost, h.Cfg.BcryptCost)
    if err != nil {
        return createFailed(c, err)
    }
    return h.issue(ctx, c, http.StatusCreated, staffPart{ID: id, Email: req.Email, Role: model.RoleHost})
}

// CreateStaff lets a manager add a HOST or MANAGER account.  No tokens
// are issued; the new member logs in.  POST /v1/staff
func (h *AuthHandler) CreateStaff(c echo.Context) error {
    var req createStaffReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if msg := checkCredentials(&req.Email, req.Password); msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }
    role, ok := parseRole(req.Role)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be HOST or MANAGER"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    id, err := h.Staff.Create(ctx, req.Email, req.Password, role, h.Cfg.BcryptCost)
    if err != nil {
        return createFailed(c, err)
    }
    if by, ok := middleware.StaffID(c); ok {
        c.Logger().Infof("staff %d created %s account %d", by, role, id)
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": staffPart{ID: id, Email: req.Email, Role: role}})
}

// Login verifies credentials of an active account and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    u, err := h.Staff.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrStaffNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    return h.issue(ctx, c, http.StatusOK, staffPart{ID: u.ID, Email: u.Email, Role: u.Role})
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    staffID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke refresh failed"})
    }
    u, err := h.Staff.GetByID(ctx, staffID)
    if err != nil || !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    return h.issue(ctx, c, http.StatusOK, staffPart{ID: u.ID, Email: u.Email, Role: u.Role})
}

// Logout revokes the refresh token in the body, or every refresh token
// of the bearer when the body has none.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req)
    raw := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := context.WithTimeout(c.Request().Context(), authTimeout)
    defer cancel()

    if raw != "" {
        hash := utils.HashRefreshRaw(raw)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
        }
        return c.NoContent(http.StatusNoContent)
    }

    auth := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(auth, "Bearer ") {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
    }
    claims, err := middleware.ParseAccessToken(strings.TrimPrefix(auth, "Bearer "), h.Cfg.JWTSecret)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := middleware.Subject(claims)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
    }
    return c.NoContent(http.StatusNoContent)
}

// Me echoes the identity carried by the access token.
func (h *AuthHandler) Me(c echo.Context) error {
    id, _ := middleware.StaffID(c)
    return c.JSON(http.StatusOK, echo.Map{
        "user_id": id,
        "role":    c.Get(middleware.ContextRole),
    })
}
