package restapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/events/modules/users"
	"github.com/userdesk/console-backend/model"
	"github.com/userdesk/console-backend/restapi/modules/auth"
	"github.com/userdesk/console-backend/restapi/modules/users"
)

// SetupRoutes configures all REST API routes and the GraphQL endpoint.
// Write operations require the admin account role except the job-role-only
// update path, which Corporate Admin reaches through the same handler.
func SetupRoutes(app *fiber.App, db database.DBConnection, producer *userevents.Producer, schema graphql.Schema) {
	api := app.Group("/api/v1")

	api.Post("/auth/login", auth.Login(db))

	api.Post("/graphql", auth.RequireAuth, GraphQLHandler(schema))

	u := api.Group("/users", auth.RequireAuth)
	u.Get("/", users.ListUsers(db))
	u.Post("/", auth.RequireRole(model.RoleAdmin), users.CreateUser(db, producer))
	u.Post("/upload-csv", auth.RequireRole(model.RoleAdmin), users.UploadCSV(db, producer))
	u.Get("/export-csv", auth.RequireRole(model.RoleAdmin), users.ExportCSV(db))
	u.Get("/:id", users.GetUser(db))
	u.Put("/:id", auth.RequireRole(model.RoleCorporateAdmin), users.UpdateUser(db, producer))
	u.Delete("/:id", auth.RequireRole(model.RoleAdmin), users.DeleteUser(db, producer))
}
