package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/dto"
	"github.com/amjkhan-git/HMCC-Calendar/internal/export"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
	"github.com/amjkhan-git/HMCC-Calendar/internal/service"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ExportHandler struct {
	cal service.CalendarService
	now func() time.Time
}

func NewExportHandler(cal service.CalendarService) *ExportHandler {
	return &ExportHandler{cal: cal, now: time.Now}
}

func (h *ExportHandler) RegisterRoutes(admin *echo.Group) {
	g := admin.Group("/export")
	g.GET("/json", h.JSON)
	g.GET("/csv", h.CSV)
	g.GET("/xlsx", h.XLSX)
}

func (h *ExportHandler) JSON(c echo.Context) error {
	rows, err := h.cal.ExportRows(c.Request().Context())
	if err != nil {
		return err
	}
	exportedBy := ""
	if id := middleware.IdentityFrom(c); id != nil {
		exportedBy = id.Username
	}
	return c.JSON(http.StatusOK, dto.Envelope{
		Success: true,
		Data:    rows,
		Meta: dto.ExportMeta{
			ExportedAt: h.now().UTC(),
			ExportedBy: exportedBy,
			Total:      len(rows),
		},
	})
}

func (h *ExportHandler) CSV(c echo.Context) error {
	rows, err := h.cal.ExportRows(c.Request().Context())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, rows); err != nil {
		return fmt.Errorf("render csv: %w", err)
	}
	return h.attachment(c, "csv", "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ExportHandler) XLSX(c echo.Context) error {
	rows, err := h.cal.ExportRows(c.Request().Context())
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rows); err != nil {
		return fmt.Errorf("render xlsx: %w", err)
	}
	return h.attachment(c, "xlsx", mimeXLSX, buf.Bytes())
}

func (h *ExportHandler) attachment(c echo.Context, ext, contentType string, body []byte) error {
	name := export.Filename(ext, h.now())
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, contentType, body)
}
