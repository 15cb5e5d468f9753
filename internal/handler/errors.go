package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/trackademy/batchline/internal/domain"
)

// toHTTPError maps domain errors onto HTTP status codes. Storage and
// decode failures surface as 503 so callers know a retry may help;
// anything unclassified falls through to the app error handler as a 500.
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrStorage), errors.Is(err, domain.ErrDecode):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return err
	}
}
