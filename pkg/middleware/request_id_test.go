package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestID(zap.NewNop()))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})
	return app
}

func TestRequestIDGenerated(t *testing.T) {
	resp, err := newTestApp().Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	id := resp.Header.Get(HeaderRequestID)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestRequestIDPropagated(t *testing.T) {
	want := uuid.New().String()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, want)

	resp, err := newTestApp().Test(req)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Header.Get(HeaderRequestID))
}

func TestRequestIDMalformedReplaced(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")

	resp, err := newTestApp().Test(req)
	require.NoError(t, err)

	got := resp.Header.Get(HeaderRequestID)
	assert.NotEqual(t, "not-a-uuid", got)
	_, err = uuid.Parse(got)
	assert.NoError(t, err)
}
