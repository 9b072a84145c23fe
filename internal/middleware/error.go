package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tensioapp/tensio/internal/logging"
	"github.com/tensioapp/tensio/internal/models"
)

// ErrorHandler returns a custom error handler middleware. It catches errors
// that escape the handlers, including panics surfaced by the recover
// middleware, and renders them in the standard error envelope.
func ErrorHandler(logger *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "An unexpected error occurred"
		errCode := "INTERNAL_ERROR"

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			code = fiberErr.Code
			message = fiberErr.Message
			errCode = "ERROR"
		}

		logger.Error("Request error",
			"path", c.Path(),
			"method", c.Method(),
			"status", code,
			"error", err,
		)

		return c.Status(code).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    errCode,
				Message: message,
			},
		})
	}
}
