package users

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/events/modules/users"
	"github.com/userdesk/console-backend/model"
	"github.com/userdesk/console-backend/restapi/modules/auth"
)

// CreateUserRequest is the body for POST /users.
type CreateUserRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role,omitempty"`
	Status      string `json:"status,omitempty"`
	AccountRole string `json:"account_role,omitempty"`
}

// UpdateUserRequest is the body for PUT /users/:id. All fields are optional;
// absent fields are left untouched. Pointers distinguish "absent" from
// "set to empty".
type UpdateUserRequest struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Password    *string `json:"password,omitempty"`
	Role        *string `json:"role,omitempty"`
	Status      *string `json:"status,omitempty"`
	AccountRole *string `json:"account_role,omitempty"`
}

// ListResponse is the paginated body of GET /users.
type ListResponse struct {
	Items    []model.User `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// parseListParams validates the shared query parameters of the list and
// export endpoints. On failure it writes the 400 response and returns false.
func parseListParams(c *fiber.Ctx, paginated bool) (ListParams, bool) {
	p := ListParams{
		Role:        c.Query("role"),
		Status:      c.Query("status"),
		AccountRole: c.Query("account_role"),
		Search:      c.Query("search"),
		SortField:   c.Query("sort_field"),
		SortOrder:   c.Query("sort_order", "asc"),
	}

	if paginated {
		p.Page = c.QueryInt("page", 1)
		p.PageSize = c.QueryInt("page_size", 10)
		if p.Page < 1 {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page must be >= 1"})
			return p, false
		}
		if p.PageSize < 1 || p.PageSize > 100 {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "page_size must be between 1 and 100"})
			return p, false
		}
	}

	if p.Role != "" && !model.JobRole(p.Role).Valid() {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role: " + p.Role + ". Must be 'manager' or 'developer'",
		})
		return p, false
	}
	if p.Status != "" && !model.Status(p.Status).Valid() {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status: " + p.Status + ". Must be 'active' or 'inactive'",
		})
		return p, false
	}
	if p.AccountRole != "" && !model.AccountRole(p.AccountRole).Valid() {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid account_role: " + p.AccountRole + ". Must be 'admin', 'corporate_admin', or 'end_user'",
		})
		return p, false
	}
	if p.SortField != "" && !sortFields[p.SortField] {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sort_field: " + p.SortField,
		})
		return p, false
	}
	if p.SortOrder != "asc" && p.SortOrder != "desc" {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sort_order: " + p.SortOrder + ". Must be 'asc' or 'desc'",
		})
		return p, false
	}

	return p, true
}

// ListUsers handles GET /users with pagination, sorting, filtering, and search
func ListUsers(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := parseListParams(c, true)
		if !ok {
			return nil
		}

		ctx := c.Context()

		total, err := countUsers(ctx, db, p)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count users"})
		}

		items, err := queryUsers(ctx, db, p)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list users"})
		}

		return c.JSON(ListResponse{
			Items:    items,
			Total:    total,
			Page:     p.Page,
			PageSize: p.PageSize,
		})
	}
}

// GetUser handles GET /users/:id - accessible to all authenticated users
func GetUser(db database.DBConnection) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, found, err := getUserByKey(c.Context(), db, c.Params("id"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}
		return c.JSON(user.Public())
	}
}

// CreateUser handles POST /users. Admin only.
func CreateUser(db database.DBConnection, producer *userevents.Producer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		user, errMsg := buildUser(req)
		if errMsg != "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": errMsg})
		}

		ctx := c.Context()

		// Re-validate email uniqueness at the store level; the console's own
		// check is advisory only.
		inUse, err := emailInUse(ctx, db, user.Email, "")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check for existing user"})
		}
		if inUse {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
		}

		if _, err := db.Collections["users"].CreateDocument(ctx, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error creating user. Please try again."})
		}

		producer.Publish(ctx, userevents.EventUserCreated, user.Key, user.Email)

		return c.Status(fiber.StatusCreated).JSON(user.Public())
	}
}

// buildUser validates a create request and assembles the user document.
// Returns a non-empty message on validation failure.
func buildUser(req CreateUserRequest) (*model.User, string) {
	if err := model.ValidateName(req.Name); err != nil {
		return nil, err.Error()
	}
	if err := model.ValidateEmail(req.Email); err != nil {
		return nil, err.Error()
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		return nil, err.Error()
	}

	role := model.JobRole(req.Role)
	if !role.Valid() {
		return nil, "Invalid role: " + req.Role + ". Must be 'manager' or 'developer'"
	}
	status := model.Status(req.Status)
	if req.Status != "" && !status.Valid() {
		return nil, "Invalid status: " + req.Status + ". Must be 'active' or 'inactive'"
	}
	accountRole := model.AccountRole(req.AccountRole)
	if req.AccountRole != "" && !accountRole.Valid() {
		return nil, "Invalid account_role: " + req.AccountRole
	}

	user := model.NewUser(req.Name, req.Email)
	user.Key = uuid.New().String()
	user.Role = role
	if req.Status != "" {
		user.Status = status
	}
	if req.AccountRole != "" {
		user.AccountRole = accountRole
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, "Failed to hash password"
	}
	user.PasswordHash = hash

	return user, ""
}

// UpdateUser handles PUT /users/:id.
//   - Admin can update all fields
//   - Corporate Admin can update only the job role field
//   - End users cannot update
func UpdateUser(db database.DBConnection, producer *userevents.Producer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateUserRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		ctx := c.Context()
		key := c.Params("id")

		user, found, err := getUserByKey(ctx, db, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		switch auth.CurrentRole(c) {
		case model.RoleAdmin:
			if !applyAdminUpdate(c, db, user, req) {
				return nil
			}
		case model.RoleCorporateAdmin:
			if req.Role == nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Corporate Admin can only update job role field",
				})
			}
			if req.Name != nil || req.Email != nil || req.Password != nil || req.Status != nil || req.AccountRole != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Corporate Admin can only update job role field",
				})
			}
			role := model.JobRole(*req.Role)
			if !role.Valid() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid role: " + *req.Role + ". Must be 'manager' or 'developer'",
				})
			}
			user.Role = role
		default:
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Insufficient permissions to update user"})
		}

		user.UpdatedAt = time.Now().UTC()
		if _, err := db.Collections["users"].UpdateDocument(ctx, key, user); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error updating user. Please try again."})
		}

		producer.Publish(ctx, userevents.EventUserUpdated, key, user.Email)

		return c.JSON(user.Public())
	}
}

// applyAdminUpdate applies an admin's update request to the user in place.
// On failure it writes the error response and returns false.
func applyAdminUpdate(c *fiber.Ctx, db database.DBConnection, user *model.User, req UpdateUserRequest) bool {
	ctx := c.Context()

	if req.Name != nil {
		if err := model.ValidateName(*req.Name); err != nil {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			return false
		}
		user.Name = *req.Name
	}
	if req.Email != nil {
		if err := model.ValidateEmail(*req.Email); err != nil {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			return false
		}
		normalized := model.NormalizeEmail(*req.Email)
		inUse, err := emailInUse(ctx, db, normalized, user.Key)
		if err != nil {
			_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check for existing user"})
			return false
		}
		if inUse {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Email already registered"})
			return false
		}
		user.Email = normalized
	}
	if req.Password != nil {
		if err := model.ValidatePassword(*req.Password); err != nil {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
			return false
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			_ = c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to hash password"})
			return false
		}
		user.PasswordHash = hash
	}
	if req.Role != nil {
		role := model.JobRole(*req.Role)
		if !role.Valid() {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid role: " + *req.Role + ". Must be 'manager' or 'developer'",
			})
			return false
		}
		user.Role = role
	}
	if req.Status != nil {
		status := model.Status(*req.Status)
		if !status.Valid() {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid status: " + *req.Status + ". Must be 'active' or 'inactive'",
			})
			return false
		}
		user.Status = status
	}
	if req.AccountRole != nil {
		accountRole := model.AccountRole(*req.AccountRole)
		if !accountRole.Valid() {
			_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid account_role: " + *req.AccountRole,
			})
			return false
		}
		user.AccountRole = accountRole
	}

	return true
}

// DeleteUser handles DELETE /users/:id. Admin only.
func DeleteUser(db database.DBConnection, producer *userevents.Producer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		key := c.Params("id")

		user, found, err := getUserByKey(ctx, db, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user"})
		}
		if !found {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
		}

		if _, err := db.Collections["users"].DeleteDocument(ctx, key); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error deleting user. Please try again."})
		}

		producer.Publish(ctx, userevents.EventUserDeleted, key, user.Email)

		return c.JSON(fiber.Map{"message": "User deleted successfully", "id": key})
	}
}
