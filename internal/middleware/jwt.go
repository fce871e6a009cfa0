package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/noah-isme/algotutor-api/internal/models"
	"github.com/noah-isme/algotutor-api/internal/service"
	"github.com/noah-isme/algotutor-api/internal/utils"
)

// Locals keys populated by JWTProtected.
const (
	LocalPrincipal = "principal"
	LocalSessionID = "session_id"
	LocalUserID    = "user_id"
	LocalUserRole  = "user_role"
)

// SessionAuthenticator verifies bearer tokens and restores the session they
// point at.
type SessionAuthenticator interface {
	ParseToken(token string) (service.TokenClaims, error)
	Current(ctx context.Context, sessionID string) (models.Principal, bool)
}

// JWTProtected validates the bearer token and loads the principal from the
// session store. A valid token whose session is gone is rejected.
// Websocket upgrades may pass the token as ?token= instead.
func JWTProtected(auth SessionAuthenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, message := bearerToken(c)
		if tokenString == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, message)
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		principal, ok := auth.Current(c.UserContext(), claims.SessionID)
		if !ok || principal.ID != claims.Subject {
			return utils.SendError(c, fiber.StatusUnauthorized, "session expired")
		}

		c.Locals(LocalPrincipal, principal)
		c.Locals(LocalSessionID, claims.SessionID)
		c.Locals(LocalUserID, principal.ID)
		c.Locals(LocalUserRole, string(principal.Role))

		return c.Next()
	}
}

// PrincipalFrom returns the principal loaded by JWTProtected.
func PrincipalFrom(c *fiber.Ctx) (models.Principal, bool) {
	principal, ok := c.Locals(LocalPrincipal).(models.Principal)
	return principal, ok && principal.ID != ""
}

// SessionIDFrom returns the session id carried by the bearer token.
func SessionIDFrom(c *fiber.Ctx) string {
	sid, _ := c.Locals(LocalSessionID).(string)
	return sid
}

func bearerToken(c *fiber.Ctx) (string, string) {
	authorization := c.Get("Authorization")
	if authorization == "" {
		if websocket.IsWebSocketUpgrade(c) {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				return token, ""
			}
		}
		return "", "authorization header missing"
	}

	const bearer = "Bearer "
	if !strings.HasPrefix(strings.ToLower(authorization), strings.ToLower(bearer)) {
		return "", "invalid authorization header"
	}

	tokenString := strings.TrimSpace(authorization[len(bearer):])
	if tokenString == "" {
		return "", "invalid token"
	}
	return tokenString, ""
}
