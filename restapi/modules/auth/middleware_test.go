package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/console-backend/model"
)

func newAuthTestApp(roles ...model.AccountRole) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{RequireAuth}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": c.Locals("account_role")})
	})
	app.Get("/protected", handlers...)
	return app
}

func TestRequireAuth(t *testing.T) {
	app := newAuthTestApp()

	t.Run("missing header", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/protected", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("bearer prefix", func(t *testing.T) {
		token, err := GenerateJWT("u1", model.RoleEndUser)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("bare token", func(t *testing.T) {
		token, err := GenerateJWT("u1", model.RoleEndUser)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/protected", nil)
		req.Header.Set("Authorization", token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestRequireRoleHierarchy(t *testing.T) {
	tests := []struct {
		name     string
		caller   model.AccountRole
		required model.AccountRole
		want     int
	}{
		{"admin reaches admin routes", model.RoleAdmin, model.RoleAdmin, fiber.StatusOK},
		{"admin reaches corporate admin routes", model.RoleAdmin, model.RoleCorporateAdmin, fiber.StatusOK},
		{"corporate admin blocked from admin routes", model.RoleCorporateAdmin, model.RoleAdmin, fiber.StatusForbidden},
		{"corporate admin reaches own routes", model.RoleCorporateAdmin, model.RoleCorporateAdmin, fiber.StatusOK},
		{"end user blocked from corporate admin routes", model.RoleEndUser, model.RoleCorporateAdmin, fiber.StatusForbidden},
		{"end user reaches end user routes", model.RoleEndUser, model.RoleEndUser, fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newAuthTestApp(tt.required)
			token, err := GenerateJWT("u1", tt.caller)
			require.NoError(t, err)

			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
