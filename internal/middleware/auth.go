package middleware

import (
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"gudang/internal/services"
	"gudang/internal/session"
)

const scopeLocal = "scope"

// AuthRequired checks for a valid session token and stores the resolved
// record scope in the request context. A token that validates but carries no
// user id is treated as an unresolved session and rejected.
func AuthRequired(authService *services.AuthService, tenantID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("Token validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
				"error":   err.Error(),
			})
		}

		userID, _ := claims["user_id"].(string)
		scope := session.Scope{TenantID: tenantID, UserID: userID}
		if err := scope.Validate(); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Session did not resolve to a user",
				"error":   err.Error(),
			})
		}

		c.Locals(scopeLocal, scope)
		return c.Next()
	}
}

// ScopeFromCtx returns the scope resolved by AuthRequired.
func ScopeFromCtx(c *fiber.Ctx) (session.Scope, bool) {
	scope, ok := c.Locals(scopeLocal).(session.Scope)
	return scope, ok
}
