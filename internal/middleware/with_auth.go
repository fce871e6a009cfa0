package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/algotutor-api/internal/policy"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// Auth role constants used by WithAuth helper.
const (
	AuthRoleAny   = "any"
	AuthRoleAdmin = "admin"
	// AuthRoleStaff admits administrators and approved teachers.
	AuthRoleStaff = "staff"
)

// AuthOptions configures the WithAuth helper.
type AuthOptions struct {
	Role string
}

// WithAuth wraps a handler with a principal guard. It expects JWTProtected
// to have run.
func WithAuth(handler fiber.Handler, opts AuthOptions) fiber.Handler {
	role := strings.ToLower(strings.TrimSpace(opts.Role))
	if role == "" {
		role = AuthRoleAny
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFrom(c)
		if !ok {
			return utils.Fail(c, fiber.StatusUnauthorized, "authentication required", nil)
		}

		switch role {
		case AuthRoleAny:
		case AuthRoleAdmin:
			if !policy.CanManageDirectory(principal) {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		case AuthRoleStaff:
			if !policy.CanManageContent(principal) {
				return utils.Fail(c, fiber.StatusForbidden, "account pending approval", nil)
			}
		default:
			if string(principal.Role) != role {
				return utils.Fail(c, fiber.StatusForbidden, "insufficient permissions", nil)
			}
		}

		return handler(c)
	}
}
