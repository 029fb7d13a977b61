package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

const (
	identityKey = "admin_identity"
	tokenKey    = "admin_token"
)

func bearerToken(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// RequireAdmin rejects the request unless it carries a live admin session.
func RequireAdmin(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			id, err := auth.ValidateSession(c.Request().Context(), token)
			if err != nil {
				return err
			}
			if id.Role != service.RoleAdmin {
				return service.ErrUnauthorized
			}
			SetIdentity(c, id, token)
			return next(c)
		}
	}
}

// OptionalAdmin attaches the admin identity when a valid session is present
// and lets anonymous requests through otherwise.
func OptionalAdmin(auth service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if token := bearerToken(c); token != "" {
				if id, err := auth.ValidateSession(c.Request().Context(), token); err == nil && id.Role == service.RoleAdmin {
					SetIdentity(c, id, token)
				}
			}
			return next(c)
		}
	}
}

func SetIdentity(c echo.Context, id *service.Identity, token string) {
	c.Set(identityKey, id)
	c.Set(tokenKey, token)
}

// IdentityFrom returns the admin identity set by the auth middleware, or nil.
func IdentityFrom(c echo.Context) *service.Identity {
	id, _ := c.Get(identityKey).(*service.Identity)
	return id
}

func TokenFrom(c echo.Context) string {
	t, _ := c.Get(tokenKey).(string)
	return t
}

// RequestMeta captures the audit context of the current request.
func RequestMeta(c echo.Context) service.RequestMeta {
	meta := service.RequestMeta{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	if id := IdentityFrom(c); id != nil {
		meta.Actor = id.Username
	}
	return meta
}
