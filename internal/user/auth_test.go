package user

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_RoundTrip(t *testing.T) {
	app := fiber.New()
	app.Use(Middleware(testSecret))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := GetUserIDFromCtx(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	token, err := IssueToken(User{ID: 42, Email: "a@example.com"}, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/whoami", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	other, err := IssueToken(User{ID: 42}, "another-secret", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest("GET", "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+other)
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}

func TestGetUserIDFromCtx_NoToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := GetUserIDFromCtx(c)
		return err
	})

	res, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
}
