package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/flowkick/mchat-tools/internal/config"
	"github.com/flowkick/mchat-tools/internal/repository"
	"github.com/flowkick/mchat-tools/internal/utils"
)

// AuthHandler serves admin registration and session management for the
// dashboard. Access tokens are short-lived JWTs; refresh tokens are
// opaque random strings stored hashed and rotated on every use.
type AuthHandler struct {
	Admins *repository.AdminRepo
	Tokens *repository.TokenRepo
	Cfg    config.Config
}

func NewAuthHandler(admins *repository.AdminRepo, tokens *repository.TokenRepo, cfg config.Config) *AuthHandler {
	return &AuthHandler{Admins: admins, Tokens: tokens, Cfg: cfg}
}

type registerPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates a new admin account.
func (h *AuthHandler) Register(c echo.Context) error {
	var p registerPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p.Email = strings.TrimSpace(p.Email)
	if p.Email == "" || !strings.Contains(p.Email, "@") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "valid email required"})
	}
	if len(p.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	id, err := h.Admins.Create(c.Request().Context(), p.Email, p.Password, h.Cfg.BcryptCost)
	if errors.Is(err, repository.ErrEmailExists) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "email": strings.ToLower(p.Email)})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and issues an access/refresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var p loginPayload
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	admin, err := h.Admins.GetByEmail(ctx, p.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if !admin.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "account disabled"})
	}
	if !utils.VerifyPassword(admin.PasswordHash, p.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	return h.issuePair(c, admin.ID)
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a refresh token: the presented token is revoked and
// a fresh pair is issued. A reused (already revoked) token is treated
// as invalid.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var p refreshPayload
	if err := c.Bind(&p); err != nil || p.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx := c.Request().Context()
	hash := utils.HashRefreshRaw(p.RefreshToken)
	adminID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return h.issuePair(c, adminID)
}

// Logout revokes the presented refresh token. The access token simply
// expires; no server-side denylist is kept.
func (h *AuthHandler) Logout(c echo.Context) error {
	var p refreshPayload
	if err := c.Bind(&p); err != nil || p.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	if err := h.Tokens.RevokeByHash(c.Request().Context(), utils.HashRefreshRaw(p.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// LogoutAll revokes every active refresh token the admin holds,
// ending all dashboard sessions at once. Outstanding access tokens
// still run out their short TTL.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	if err := h.Tokens.RevokeAllForAdmin(c.Request().Context(), adminID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Me returns the authenticated admin's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	adminID, err := requireAdmin(c)
	if err != nil {
		return err
	}
	admin, err := h.Admins.GetByID(c.Request().Context(), adminID)
	if errors.Is(err, sql.ErrNoRows) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"id":         admin.ID,
		"email":      admin.Email,
		"is_active":  admin.IsActive,
		"created_at": admin.CreatedAt,
	})
}

func (h *AuthHandler) issuePair(c echo.Context, adminID uint64) error {
	ctx := c.Request().Context()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, adminID, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if err := h.Tokens.StoreRefresh(ctx, adminID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access_token":       access.Token,
		"access_expires_at":  access.Exp,
		"refresh_token":      refresh.Raw,
		"refresh_expires_at": refresh.Exp,
	})
}
