package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/userdesk/console-backend/model"
)

// bearerToken extracts the token from an Authorization header. Both
// "Bearer <token>" and a bare token are accepted.
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// RequireAuth middleware validates the bearer token and blocks guests
func RequireAuth(c *fiber.Ctx) error {
	token := bearerToken(c)
	if token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authorization header missing",
		})
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	if claims.AccountRole == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token has no associated role",
		})
	}

	// Store user info in context
	c.Locals("user_id", claims.Subject)
	c.Locals("account_role", claims.AccountRole)

	return c.Next()
}

// RequireRole middleware checks if the caller has one of the required roles.
// The role hierarchy applies: a higher role satisfies any lower requirement.
func RequireRole(allowedRoles ...model.AccountRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleStr, ok := c.Locals("account_role").(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		userRole := model.AccountRole(roleStr)
		for _, role := range allowedRoles {
			if userRole == role || userRole.Level() >= role.Level() {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}

// CurrentRole returns the account role stored by RequireAuth.
func CurrentRole(c *fiber.Ctx) model.AccountRole {
	roleStr, _ := c.Locals("account_role").(string)
	return model.AccountRole(roleStr)
}
