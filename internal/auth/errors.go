package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/aldoetobex/legal-case-backend/pkg/models"
)

/* =========================== Error Formatting =========================== */

// httpCodeToString converts an HTTP status code to a short, stable string.
func httpCodeToString(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusConflict:
		return "CONFLICT"
	case fiber.StatusUnprocessableEntity:
		return "UNPROCESSABLE_ENTITY"
	case fiber.StatusRequestEntityTooLarge:
		return "PAYLOAD_TOO_LARGE"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// NewErrorHandler returns the global Fiber error handler. Only *fiber.Error
// messages reach the client; anything else is logged and answered with a
// generic 500.
func NewErrorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := fiber.ErrInternalServerError.Message

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			if strings.TrimSpace(fe.Message) != "" {
				msg = fe.Message
			} else {
				msg = defaultMessage(code)
			}
		}

		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Interface("request_id", c.Locals("requestid")).
				Msg("request failed")
			msg = fiber.ErrInternalServerError.Message
		}

		return c.Status(code).JSON(models.ErrorResponse{
			Code:    httpCodeToString(code),
			Error:   true,
			Message: msg,
		})
	}
}

func defaultMessage(code int) string {
	switch code {
	case fiber.StatusBadRequest:
		return fiber.ErrBadRequest.Message
	case fiber.StatusUnauthorized:
		return fiber.ErrUnauthorized.Message
	case fiber.StatusForbidden:
		return fiber.ErrForbidden.Message
	case fiber.StatusNotFound:
		return fiber.ErrNotFound.Message
	case fiber.StatusConflict:
		return fiber.ErrConflict.Message
	case fiber.StatusRequestEntityTooLarge:
		return fiber.ErrRequestEntityTooLarge.Message
	default:
		return fiber.ErrInternalServerError.Message
	}
}
