package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-reservation/internal/config"
	"github.com/iliyamo/train-seat-reservation/internal/middleware"
	"github.com/iliyamo/train-seat-reservation/internal/model"
	"github.com/iliyamo/train-seat-reservation/internal/utils"
)

// Accounts is what the auth endpoints need from the user directory.
type Accounts interface {
	Register(ctx context.Context, userName, password, role string) (model.User, error)
	Verify(userName, password string) (string, error)
	Find(userName string) (model.User, bool)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users Accounts
}

func NewAuthHandler(cfg config.Config, users Accounts) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// ----- DTOs -----

type credentialsReq struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	UserName string `json:"user_name"`
	Role     string `json:"role"`
	Tickets  int    `json:"tickets"`
}

type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Register creates a CUSTOMER account and returns an access token right
// away. ADMIN accounts are only created from configuration at startup.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.UserName = strings.TrimSpace(req.UserName)
	if req.UserName == "" || req.Password == "" {
		return badRequest(c, "user_name/password required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Register(ctx, req.UserName, req.Password, model.RoleCustomer)
	if err != nil {
		return writeError(c, err)
	}
	return h.issue(c, http.StatusCreated, u)
}

// Login verifies the credentials and returns a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.UserName) == "" || req.Password == "" {
		return badRequest(c, "user_name/password required")
	}

	name, err := h.Users.Verify(req.UserName, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	u, ok := h.Users.Find(name)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials"})
	}
	return h.issue(c, http.StatusOK, u)
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u, ok := h.Users.Find(middleware.UserID(c))
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not_authenticated"})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

func (h *AuthHandler) issue(c echo.Context, status int, u model.User) error {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.UserName, u.EffectiveRole(), h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(status, authResp{
		User:   toUserPart(u),
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

func toUserPart(u model.User) userPart {
	return userPart{UserName: u.UserName, Role: u.EffectiveRole(), Tickets: len(u.Tickets)}
}
