package server

import (
	"errors"
	"log/slog"
	"strings"

	"cookbook/internal/models"
	"cookbook/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// statusFor maps an error code onto the HTTP status the client sees.
func statusFor(code string) int {
	switch code {
	case models.CodeValidation:
		return fiber.StatusBadRequest
	case models.CodeNotFound:
		return fiber.StatusNotFound
	case models.CodeUnauthorized:
		return fiber.StatusUnauthorized
	case models.CodeAuthorizationDenied:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes {error, code, details}. Internal errors are logged
// and their cause is not sent.
func respondError(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		appErr = models.NewInternalError(err)
	}

	status := statusFor(appErr.Code)
	if status == fiber.StatusInternalServerError {
		observability.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
		return c.Status(status).JSON(models.ErrorResponse{
			Error: "Internal server error",
			Code:  models.CodeInternal,
		})
	}
	return c.Status(status).JSON(models.ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Details: strings.Join(appErr.Problems, "; "),
	})
}
