package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fleetops/fuelwatch/internal/domain"
)

// ErrorHandler maps domain errors onto HTTP status codes. Handlers return
// errors instead of building error responses themselves.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var notFound *domain.NotFoundError
		var validation *domain.ValidationError
		var conflict *domain.IntegrityConflictError
		var fiberErr *fiber.Error

		switch {
		case errors.As(err, &notFound):
			code = fiber.StatusNotFound
		case errors.As(err, &validation):
			code = fiber.StatusBadRequest
		case errors.As(err, &conflict):
			code = fiber.StatusConflict
		case errors.As(err, &fiberErr):
			code = fiberErr.Code
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
