package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ISOTime renders t as RFC 3339 in UTC, the format every JSON body uses.
func ISOTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ISOTimePtr is ISOTime for optional timestamps; nil stays nil.
func ISOTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := ISOTime(*t)
	return &s
}

// ParamUUID parses a route parameter, answering 400 with msg when it is not a uuid.
func ParamUUID(c *fiber.Ctx, name, msg string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return id, nil
}
