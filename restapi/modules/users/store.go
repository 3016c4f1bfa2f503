// Package users implements the REST API handlers for user management.
package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/model"
)

// ListParams captures the pagination, sorting, and filter options of the
// list and export endpoints.
type ListParams struct {
	Page        int
	PageSize    int
	SortField   string
	SortOrder   string
	Role        string
	Status      string
	AccountRole string
	Search      string
}

// sortFields is the whitelist of fields the API accepts in sort_field.
// The value is interpolated into AQL, so only known names may pass.
var sortFields = map[string]bool{
	"name":         true,
	"email":        true,
	"role":         true,
	"status":       true,
	"account_role": true,
	"created_at":   true,
	"updated_at":   true,
}

// buildFilter assembles the AQL FILTER clauses and bind vars shared by the
// list, count, and export queries.
func buildFilter(p ListParams) (string, map[string]interface{}) {
	var clauses []string
	bindVars := map[string]interface{}{}

	if p.Role != "" {
		clauses = append(clauses, "FILTER u.role == @role")
		bindVars["role"] = p.Role
	}
	if p.Status != "" {
		clauses = append(clauses, "FILTER u.status == @status")
		bindVars["status"] = p.Status
	}
	if p.AccountRole != "" {
		clauses = append(clauses, "FILTER u.account_role == @accountRole")
		bindVars["accountRole"] = p.AccountRole
	}
	if p.Search != "" {
		clauses = append(clauses, "FILTER LIKE(LOWER(u.name), @search) OR LIKE(LOWER(u.email), @search)")
		bindVars["search"] = "%" + strings.ToLower(p.Search) + "%"
	}

	return strings.Join(clauses, "\n\t\t\t"), bindVars
}

// sortClause returns the AQL SORT clause for the validated sort options.
// Default ordering is newest first, matching the console's list view.
func sortClause(p ListParams) string {
	if p.SortField == "" {
		return "SORT u.created_at DESC"
	}
	direction := "ASC"
	if p.SortOrder == "desc" {
		direction = "DESC"
	}
	return fmt.Sprintf("SORT u.%s %s", p.SortField, direction)
}

// countUsers returns the total number of users matching the filters.
func countUsers(ctx context.Context, db database.DBConnection, p ListParams) (int, error) {
	filter, bindVars := buildFilter(p)
	query := fmt.Sprintf(`
		FOR u IN users
			%s
			COLLECT WITH COUNT INTO total
			RETURN total
	`, filter)

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return 0, err
	}
	defer cursor.Close()

	total := 0
	if cursor.HasMore() {
		if _, err := cursor.ReadDocument(ctx, &total); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// queryUsers returns the users matching the filters. A zero page size means
// no pagination (used by the CSV export).
func queryUsers(ctx context.Context, db database.DBConnection, p ListParams) ([]model.User, error) {
	filter, bindVars := buildFilter(p)

	limit := ""
	if p.PageSize > 0 {
		limit = "LIMIT @offset, @count"
		bindVars["offset"] = (p.Page - 1) * p.PageSize
		bindVars["count"] = p.PageSize
	}

	query := fmt.Sprintf(`
		FOR u IN users
			%s
			%s
			%s
			RETURN u
	`, filter, sortClause(p), limit)

	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{BindVars: bindVars})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	users := []model.User{}
	for cursor.HasMore() {
		var user model.User
		if _, err := cursor.ReadDocument(ctx, &user); err != nil {
			return nil, err
		}
		users = append(users, user.Public())
	}

	return users, nil
}

// getUserByKey fetches one user document by key. The second return value
// reports whether the user exists.
func getUserByKey(ctx context.Context, db database.DBConnection, key string) (*model.User, bool, error) {
	query := `
		FOR u IN users
			FILTER u._key == @key
			LIMIT 1
			RETURN u
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"key": key},
	})
	if err != nil {
		return nil, false, err
	}
	defer cursor.Close()

	if !cursor.HasMore() {
		return nil, false, nil
	}

	var user model.User
	if _, err := cursor.ReadDocument(ctx, &user); err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

// emailInUse reports whether another user already owns the email address.
// excludeKey skips the user being updated.
func emailInUse(ctx context.Context, db database.DBConnection, email, excludeKey string) (bool, error) {
	key, err := database.FindUserKeyByEmail(ctx, db.Database, email)
	if err != nil {
		return false, err
	}
	return key != "" && key != excludeKey, nil
}
