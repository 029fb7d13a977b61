package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echoMw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/amjkhan-git/HMCC-Calendar/config"
	"github.com/amjkhan-git/HMCC-Calendar/internal/handler"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

type Deps struct {
	Server   config.ServerConfig
	Log      *zap.Logger
	Calendar service.CalendarService
	Bookings service.BookingService
	Auth     service.AuthService
}

// New builds the HTTP server with every route mounted under Server.APIPrefix.
func New(d Deps) *echo.Echo {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = middleware.NewErrorHandler(log)
	e.Validator = middleware.NewRequestValidator()

	e.Use(echoMw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoMw.Recover())
	e.Use(middleware.CORS(d.Server))
	e.Use(middleware.RateLimit(d.Server.RateLimit))
	e.Use(middleware.Timeout(d.Server.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "service": "hmcc-calendar"})
	})

	prefix := d.Server.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	public := e.Group(prefix, middleware.OptionalAdmin(d.Auth))
	admin := e.Group(prefix+"/admin", middleware.RequireAdmin(d.Auth))

	handler.NewCalendarHandler(d.Calendar).RegisterRoutes(public)
	handler.NewBookingHandler(d.Calendar, d.Bookings).RegisterRoutes(public)
	handler.NewAuthHandler(d.Auth).RegisterRoutes(public, admin)
	handler.NewAdminHandler(d.Calendar, d.Bookings).RegisterRoutes(admin)
	handler.NewExportHandler(d.Calendar).RegisterRoutes(admin)

	return e
}
