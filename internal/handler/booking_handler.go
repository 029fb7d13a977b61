package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/dto"
	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

const submittedMessage = "Booking submitted successfully. Your sponsorship is pending approval by HMCC admin."

type BookingHandler struct {
	cal      service.CalendarService
	bookings service.BookingService
}

func NewBookingHandler(cal service.CalendarService, bookings service.BookingService) *BookingHandler {
	return &BookingHandler{cal: cal, bookings: bookings}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	b := g.Group("/bookings")
	b.GET("", h.ListBookings)
	b.GET("/date/:date", h.GetByDate)
	b.POST("/date/:date", h.Submit)
	b.GET("/:id", h.GetBooking)
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q != "" && len([]rune(q)) < 2 {
		return fmt.Errorf("%w: search query must be at least 2 characters", lifecycle.ErrValidation)
	}

	recs, err := h.cal.ListBookings(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    dto.ToDateResponses(recs, h.cal.Rules(), isAdmin(c)),
		Meta:    map[string]any{"total": len(recs), "query": q},
	})
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, err := h.cal.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.ToDateResponse(rec, h.cal.Rules(), isAdmin(c))))
}

func (h *BookingHandler) GetByDate(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return err
	}
	rec, err := h.cal.GetByDate(c.Request().Context(), date)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.OK(dto.ToDateResponse(rec, h.cal.Rules(), isAdmin(c))))
}

// Submit requests sponsorship of an available date. The booking waits for
// admin approval.
func (h *BookingHandler) Submit(c echo.Context) error {
	date, err := dateParam(c)
	if err != nil {
		return err
	}
	var req dto.SubmitBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	rec, err := h.bookings.Submit(c.Request().Context(), date, req.ToInput(), middleware.RequestMeta(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, dto.Envelope{
		Success: true,
		Message: submittedMessage,
		Data:    dto.ToSubmissionResponse(rec, h.cal.Rules()),
	})
}
