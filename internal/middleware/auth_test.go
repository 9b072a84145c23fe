package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tensioapp/tensio/internal/logging"
)

const testAPIKey = "0123456789abcdef0123456789abcdef"

func setupAuthApp(apiKeys []string, enabled bool) *fiber.App {
	logger := logging.NewDevelopment()
	app := fiber.New()
	app.Use(APIKeyAuth(logger, apiKeys, enabled))
	app.Get("/protected", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	return app
}

func TestValidateAPIKey(t *testing.T) {
	assert.True(t, ValidateAPIKey(testAPIKey))
	assert.False(t, ValidateAPIKey("short"))
	assert.False(t, ValidateAPIKey(""))
	assert.False(t, ValidateAPIKey(strings.Repeat(" ", MinAPIKeyLength)))
}

func TestAPIKeyAuth_Disabled(t *testing.T) {
	app := setupAuthApp(nil, false)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuth_MissingKey(t *testing.T) {
	app := setupAuthApp([]string{testAPIKey}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyAuth_XAPIKeyHeader(t *testing.T) {
	app := setupAuthApp([]string{testAPIKey}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuth_BearerToken(t *testing.T) {
	app := setupAuthApp([]string{testAPIKey}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuth_PlainAuthorizationHeader(t *testing.T) {
	app := setupAuthApp([]string{testAPIKey}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", testAPIKey)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestAPIKeyAuth_WrongKey(t *testing.T) {
	app := setupAuthApp([]string{testAPIKey}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", "ffffffffffffffffffffffffffffffff")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAPIKeyAuth_TooShortConfiguredKeyRejected(t *testing.T) {
	// A configured key below the minimum length is dropped, so presenting
	// it does not authenticate.
	app := setupAuthApp([]string{"tiny"}, true)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("X-API-Key", "tiny")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "0123****", maskAPIKey(testAPIKey))
	assert.Equal(t, "****", maskAPIKey("abc"))
}
