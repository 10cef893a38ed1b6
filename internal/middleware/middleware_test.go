package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/utils"
)

func newTestApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/chef", AuthMiddleware(cfg), RequireRoles(models.RoleChef, models.RoleAdmin), func(c *fiber.Ctx) error {
		actor, _ := CurrentActor(c)
		return c.JSON(fiber.Map{"success": true, "role": actor.Role})
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return utils.NewError(utils.ReasonNotFound, "order not found")
	})
	return app
}

func token(t *testing.T, secret string, role models.Role) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, utils.Claims{UserID: uuid.New(), Phone: "9876543210", Role: string(role)}, time.Hour)
	require.NoError(t, err)
	return tok
}

func decode(t *testing.T, app *fiber.App, path, bearer string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestAuthAndRoles(t *testing.T) {
	cfg := &config.Config{JWTSecret: "secret"}
	app := newTestApp(cfg)

	status, body := decode(t, app, "/chef", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["reason"])

	status, _ = decode(t, app, "/chef", token(t, "other", models.RoleChef))
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body = decode(t, app, "/chef", token(t, "secret", models.RoleCustomer))
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Forbidden", body["reason"])

	status, body = decode(t, app, "/chef", token(t, "secret", models.RoleChef))
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "chef", body["role"])

	status, _ = decode(t, app, "/chef?token="+token(t, "secret", models.RoleAdmin), "")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestErrorHandlerRendersAppErrors(t *testing.T) {
	app := newTestApp(&config.Config{JWTSecret: "secret"})

	status, body := decode(t, app, "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "NotFound", body["reason"])
	assert.Equal(t, "order not found", body["message"])
}
