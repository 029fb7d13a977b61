package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/dto"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
	"github.com/amjkhan-git/HMCC-Calendar/internal/models"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

// AdminHandler serves the approval queue and every admin-only transition.
// Its routes must sit behind middleware.RequireAdmin.
type AdminHandler struct {
	cal      service.CalendarService
	bookings service.BookingService
}

func NewAdminHandler(cal service.CalendarService, bookings service.BookingService) *AdminHandler {
	return &AdminHandler{cal: cal, bookings: bookings}
}

func (h *AdminHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/pending", h.Pending)

	b := g.Group("/bookings")
	b.POST("/:id/approve", h.Approve)
	b.POST("/:id/reject", h.Reject)
	b.PUT("/:id", h.Update)
	b.PATCH("/:id/payment", h.UpdatePayment)
	b.DELETE("/:id", h.Cancel)
	b.GET("/:id/audit", h.AuditLog)

	g.PATCH("/dates/:id/block", h.SetBlocked)
}

func (h *AdminHandler) Pending(c echo.Context) error {
	recs, err := h.cal.PendingApprovals(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    dto.ToDateResponses(recs, h.cal.Rules(), true),
		Meta:    map[string]int{"total": len(recs)},
	})
}

func (h *AdminHandler) Approve(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, err := h.bookings.Approve(c.Request().Context(), id, middleware.RequestMeta(c))
	return h.respond(c, rec, err, "Booking approved")
}

func (h *AdminHandler) Reject(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.RejectRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.bookings.Reject(c.Request().Context(), id, req.Reason, middleware.RequestMeta(c))
	return h.respond(c, rec, err, "Booking rejected")
}

func (h *AdminHandler) Update(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.AdminUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.bookings.Update(c.Request().Context(), id, req.ToPatch(), middleware.RequestMeta(c))
	return h.respond(c, rec, err, "Booking updated")
}

func (h *AdminHandler) UpdatePayment(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.PaymentUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	rec, err := h.bookings.UpdatePayment(c.Request().Context(), id, req.ToInput(), middleware.RequestMeta(c))
	return h.respond(c, rec, err, "Payment updated")
}

func (h *AdminHandler) Cancel(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	rec, err := h.bookings.Cancel(c.Request().Context(), id, middleware.RequestMeta(c))
	return h.respond(c, rec, err, "Booking cancelled and date released")
}

func (h *AdminHandler) SetBlocked(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	var req dto.BlockRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	msg := "Date unblocked"
	if *req.Blocked {
		msg = "Date blocked"
	}
	rec, err := h.bookings.SetBlocked(c.Request().Context(), id, *req.Blocked, middleware.RequestMeta(c))
	return h.respond(c, rec, err, msg)
}

func (h *AdminHandler) AuditLog(c echo.Context) error {
	id, err := idParam(c)
	if err != nil {
		return err
	}
	entries, err := h.bookings.AuditLog(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    entries,
		Meta:    map[string]int{"total": len(entries)},
	})
}

func (h *AdminHandler) respond(c echo.Context, rec *models.DateRecord, err error, msg string) error {
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Message: msg,
		Data:    dto.ToDateResponse(rec, h.cal.Rules(), true),
	})
}
