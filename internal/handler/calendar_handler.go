package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/dto"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

type CalendarHandler struct {
	cal service.CalendarService
}

func NewCalendarHandler(cal service.CalendarService) *CalendarHandler {
	return &CalendarHandler{cal: cal}
}

func (h *CalendarHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/calendar", h.ListCalendar)
	g.GET("/calendar/stats", h.Statistics)
	g.GET("/pricing", h.Pricing)
}

// ListCalendar returns every date in order. Contact and payment details are
// included only for an authenticated admin.
func (h *CalendarHandler) ListCalendar(c echo.Context) error {
	recs, err := h.cal.ListCalendar(c.Request().Context())
	if err != nil {
		return err
	}
	rules := h.cal.Rules()
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    dto.ToDateResponses(recs, rules, isAdmin(c)),
		Meta:    dto.ToCalendarMeta(len(recs), rules),
	})
}

func (h *CalendarHandler) Statistics(c echo.Context) error {
	stats, err := h.cal.Statistics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(stats))
}

func (h *CalendarHandler) Pricing(c echo.Context) error {
	return c.JSON(http.StatusOK, dto.OK(dto.ToPricingResponse(h.cal.Rules())))
}
