// Package dashboard implements the resolvers for dashboard metrics.
package dashboard

import (
	"context"

	"github.com/arangodb/go-driver/v2/arangodb"

	"github.com/userdesk/console-backend/database"
)

// ResolveOverview counts users by status for the top cards
func ResolveOverview(db database.DBConnection) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR u IN users
			COLLECT status = u.status WITH COUNT INTO count
			RETURN { status: status, count: count }
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	total, active, inactive := 0, 0, 0
	for cursor.HasMore() {
		var row struct {
			Status string `json:"status"`
			Count  int    `json:"count"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return nil, err
		}
		total += row.Count
		switch row.Status {
		case "active":
			active = row.Count
		case "inactive":
			inactive = row.Count
		}
	}

	return map[string]interface{}{
		"total_users":    total,
		"active_users":   active,
		"inactive_users": inactive,
	}, nil
}

// ResolveRoleDistribution counts users per account role
func ResolveRoleDistribution(db database.DBConnection) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR u IN users
			COLLECT role = u.account_role WITH COUNT INTO count
			SORT count DESC
			RETURN { account_role: role, count: count }
	`
	cursor, err := db.Database.Query(ctx, query, nil)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	rows := []map[string]interface{}{}
	for cursor.HasMore() {
		var row struct {
			AccountRole string `json:"account_role"`
			Count       int    `json:"count"`
		}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return nil, err
		}
		rows = append(rows, map[string]interface{}{
			"account_role": row.AccountRole,
			"count":        row.Count,
		})
	}

	return rows, nil
}

// ResolveRecentUsers returns the newest accounts for the signups table
func ResolveRecentUsers(db database.DBConnection, limit int) (interface{}, error) {
	ctx := context.Background()

	query := `
		FOR u IN users
			SORT u.created_at DESC
			LIMIT @limit
			RETURN {
				id: u._key,
				name: u.name,
				email: u.email,
				account_role: u.account_role,
				created_at: u.created_at
			}
	`
	cursor, err := db.Database.Query(ctx, query, &arangodb.QueryOptions{
		BindVars: map[string]interface{}{"limit": limit},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	rows := []map[string]interface{}{}
	for cursor.HasMore() {
		var row map[string]interface{}
		if _, err := cursor.ReadDocument(ctx, &row); err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return rows, nil
}
