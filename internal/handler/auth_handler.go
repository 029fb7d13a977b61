package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/dto"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

type AuthHandler struct {
	auth service.AuthService
}

func NewAuthHandler(auth service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// RegisterRoutes mounts login on the public group and the session routes on
// the admin group.
func (h *AuthHandler) RegisterRoutes(public, admin *echo.Group) {
	public.POST("/admin/login", h.Login)
	admin.POST("/logout", h.Logout)
	admin.GET("/me", h.Me)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: "Login successful",
		Data: dto.LoginResponse{
			Token:     res.Token,
			Username:  res.Username,
			ExpiresAt: res.ExpiresAt,
			ExpiresIn: res.ExpiresIn,
		},
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.auth.InvalidateSession(c.Request().Context(), middleware.TokenFrom(c)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Envelope{Success: true, Message: "Logged out successfully"})
}

func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return service.ErrUnauthorized
	}
	return c.JSON(http.StatusOK, dto.OK(id))
}
