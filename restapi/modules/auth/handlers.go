// Package auth provides authentication handlers for Fiber.
package auth

import (
	"context"
	"fmt"

	"github.com/arangodb/go-driver/v2/arangodb"
	"github.com/gofiber/fiber/v2"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/model"
)

// Login handles user login and returns a bearer token with the account role
func Login(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		if req.Username == "" || req.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Username and password are required"})
		}

		ctx := c.Context()
		user, err := getUserByEmail(ctx, db, model.NormalizeEmail(req.Username))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}

		if !CheckPasswordHash(req.Password, user.PasswordHash) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}

		if !user.IsActive() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "User account is inactive"})
		}

		accountRole := user.AccountRole
		if accountRole == "" {
			accountRole = model.RoleEndUser
		}

		token, err := GenerateJWT(user.Key, accountRole)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
		}

		return c.JSON(LoginResponse{
			Token:       token,
			AccountRole: string(accountRole),
		})
	}
}

// getUserByEmail fetches a user document by its normalized email address
func getUserByEmail(ctx context.Context, db database.DBConnection, email string) (*model.User, error) {
	query := `
		FOR u IN users
			FILTER u.email == @email
			LIMIT 1
			RETURN u
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"email": email},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, fmt.Errorf("user not found")
	}

	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}
