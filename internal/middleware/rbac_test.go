package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/algotutor-api/internal/models"
)

func roleApp(setup fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(setup)
	app.Use(RequireRole(models.RoleAdmin))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRoleReadsPrincipal(t *testing.T) {
	cases := []struct {
		name      string
		principal models.Principal
		status    int
	}{
		{name: "admin", principal: models.Principal{ID: "a1", Role: models.RoleAdmin}, status: fiber.StatusOK},
		{name: "teacher", principal: models.Principal{ID: "t1", Role: models.RoleTeacher, IsApproved: true}, status: fiber.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := roleApp(func(c *fiber.Ctx) error {
				c.Locals(LocalPrincipal, tc.principal)
				return c.Next()
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
			require.NoError(t, err)
			require.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestRequireRoleFallsBackToRoleLocal(t *testing.T) {
	app := roleApp(func(c *fiber.Ctx) error {
		c.Locals(LocalUserRole, " Admin ")
		return c.Next()
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireRoleRejectsAnonymous(t *testing.T) {
	app := roleApp(func(c *fiber.Ctx) error { return c.Next() })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
