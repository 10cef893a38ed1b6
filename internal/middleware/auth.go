package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/arfood/internal/config"
	"github.com/example/arfood/internal/models"
	"github.com/example/arfood/internal/orders"
	"github.com/example/arfood/internal/utils"
)

const claimsContextKey = "currentClaims"

// AuthMiddleware validates JWT tokens and loads the caller's claims into context.
// The token may also be passed as ?token= for EventSource clients, which
// cannot set headers.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
			}
			token = parts[1]
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		claims, err := utils.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(claimsContextKey, claims)
		return c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed. It must run after
// AuthMiddleware.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := CurrentClaims(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}
		for _, role := range roles {
			if models.Role(claims.Role) == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "access denied")
	}
}

// CurrentClaims extracts the authenticated identity from context.
func CurrentClaims(c *fiber.Ctx) (*utils.Claims, bool) {
	claims, ok := c.Locals(claimsContextKey).(*utils.Claims)
	return claims, ok && claims != nil
}

// CurrentActor returns the caller as seen by the order lifecycle.
func CurrentActor(c *fiber.Ctx) (orders.Actor, bool) {
	claims, ok := CurrentClaims(c)
	if !ok {
		return orders.Actor{}, false
	}
	return orders.Actor{ID: claims.UserID, Role: models.Role(claims.Role)}, true
}
