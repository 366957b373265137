package middleware

import (
	"errors"

	"flipledger/internal/application/images"
	"flipledger/internal/domain"
	"flipledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// StatusFor maps an error returned by the services to an HTTP status.
func StatusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case domain.IsFormatError(err), errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, images.ErrUnsupportedImage), errors.Is(err, images.ErrInvalidFileName):
		return fiber.StatusBadRequest
	case errors.Is(err, images.ErrImageTooLarge):
		return fiber.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, images.ErrImageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrExhausted):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler is the global error handler. Returns the standard error format.
// Server errors are logged and their message hidden from the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := StatusFor(err)
	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("Request failed")
		c.Locals(errorLocal, err.Error())
		message = "Internal Server Error"
	}
	return response.Error(c, message, code, nil)
}
