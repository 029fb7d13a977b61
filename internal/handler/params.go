package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/amjkhan-git/HMCC-Calendar/internal/lifecycle"
	"github.com/amjkhan-git/HMCC-Calendar/internal/middleware"
)

func idParam(c echo.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("%w: invalid booking id", lifecycle.ErrValidation)
	}
	return id, nil
}

func dateParam(c echo.Context) (string, error) {
	d := c.Param("date")
	if _, err := time.Parse(time.DateOnly, d); err != nil {
		return "", fmt.Errorf("%w: date must be YYYY-MM-DD", lifecycle.ErrValidation)
	}
	return d, nil
}

// bindAndValidate decodes the JSON body into req and runs its validate tags.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return fmt.Errorf("%w: invalid request body", lifecycle.ErrValidation)
	}
	return c.Validate(req)
}

func isAdmin(c echo.Context) bool { return middleware.IdentityFrom(c) != nil }
