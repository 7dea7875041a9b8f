package auth

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	var logs bytes.Buffer
	app := fiber.New(fiber.Config{ErrorHandler: NewErrorHandler(zerolog.New(&logs))})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("pq: relation \"cases\" does not exist")
	})
	app.Get("/gone", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Case not found")
	})
	app.Get("/plain", func(c *fiber.Ctx) error { return fiber.ErrForbidden })

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	var body bytes.Buffer
	_, _ = body.ReadFrom(resp.Body)
	assert.NotContains(t, body.String(), "relation")
	assert.Contains(t, body.String(), `"code":"INTERNAL_SERVER_ERROR"`)
	assert.Contains(t, logs.String(), "relation", "the cause is logged server-side")

	resp, _ = app.Test(httptest.NewRequest("GET", "/gone", nil))
	body.Reset()
	_, _ = body.ReadFrom(resp.Body)
	assert.Equal(t, 404, resp.StatusCode)
	assert.JSONEq(t, `{"error":true,"message":"Case not found","code":"NOT_FOUND"}`, body.String())

	resp, _ = app.Test(httptest.NewRequest("GET", "/plain", nil))
	assert.Equal(t, 403, resp.StatusCode)
}
