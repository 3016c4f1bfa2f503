// Package main provides the entry point for the userdesk console backend,
// serving the user management REST API and the dashboard GraphQL API.
package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/events/modules/users"
	gqlschema "github.com/userdesk/console-backend/graphql"
	"github.com/userdesk/console-backend/restapi"
	"github.com/userdesk/console-backend/restapi/modules/auth"
)

func main() {
	// Initialize database connection
	db := database.InitializeDatabase()

	if secret := database.GetEnvDefault("JWT_SECRET", ""); secret != "" {
		auth.SetJWTSecret(secret)
	}

	// Bootstrap users from the seed config, if one is configured
	database.SeedFromEnv(db)

	// Audit event producer and consumer, both idle when Kafka is not configured
	producer := userevents.NewProducerFromEnv()
	defer producer.Close()

	if err := userevents.RunAuditConsumer(context.Background(), db); err != nil {
		log.Printf("Audit consumer not started: %v", err)
	}

	// Initialize GraphQL schema
	gqlschema.InitDB(db)
	schema, err := gqlschema.CreateSchema()
	if err != nil {
		log.Fatalf("Failed to create GraphQL schema: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:     "userdesk console backend v1.0",
		BodyLimit:   10 * 1024 * 1024, // CSV uploads are capped at 5MB before parsing
		ReadTimeout: time.Second * 30,
	})

	// Middleware
	app.Use(fiberrecover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Health check endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
		})
	})

	// API routes
	restapi.SetupRoutes(app, db, producer, schema)

	port := database.GetEnvDefault("MS_PORT", "8000")

	// Start server
	log.Printf("Starting server on port %s", port)
	log.Printf("GraphQL endpoint available at /api/v1/graphql")
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
