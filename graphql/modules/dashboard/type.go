// Package dashboard defines the GraphQL types for the console dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"
)

// OverviewType represents the high-level metrics for the top cards
var OverviewType = graphql.NewObject(graphql.ObjectConfig{
	Name: "DashboardOverview",
	Fields: graphql.Fields{
		"total_users":    &graphql.Field{Type: graphql.Int},
		"active_users":   &graphql.Field{Type: graphql.Int},
		"inactive_users": &graphql.Field{Type: graphql.Int},
	},
})

// RoleCountType represents one slice of the account role chart
var RoleCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RoleCount",
	Fields: graphql.Fields{
		"account_role": &graphql.Field{Type: graphql.String},
		"count":        &graphql.Field{Type: graphql.Int},
	},
})

// RecentUserType represents a row in the recent signups table
var RecentUserType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RecentUser",
	Fields: graphql.Fields{
		"id":           &graphql.Field{Type: graphql.String},
		"name":         &graphql.Field{Type: graphql.String},
		"email":        &graphql.Field{Type: graphql.String},
		"account_role": &graphql.Field{Type: graphql.String},
		"created_at":   &graphql.Field{Type: graphql.String},
	},
})
