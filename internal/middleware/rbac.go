package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// RequireRole admits principals whose role is one of roles. The role comes
// from the session-backed principal, falling back to the user_role local.
func RequireRole(roles ...models.Role) fiber.Handler {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[models.ParseRole(string(role))] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		if _, ok := allowed[roleOf(c)]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

func roleOf(c *fiber.Ctx) models.Role {
	if principal, ok := PrincipalFrom(c); ok {
		return principal.Role
	}
	role, ok := c.Locals(LocalUserRole).(string)
	if !ok || role == "" {
		return ""
	}
	return models.ParseRole(role)
}
