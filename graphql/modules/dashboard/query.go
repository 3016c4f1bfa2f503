// Package dashboard defines the GraphQL queries for the dashboard.
package dashboard

import (
	"github.com/graphql-go/graphql"

	"github.com/userdesk/console-backend/database"
)

// GetQueryFields returns the dashboard queries to be mounted in the root schema
func GetQueryFields(db database.DBConnection) graphql.Fields {
	return graphql.Fields{
		// Top cards: user totals by status
		"dashboardOverview": &graphql.Field{
			Type: OverviewType,
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveOverview(db)
			},
		},
		// Chart: users per account role
		"dashboardRoleDistribution": &graphql.Field{
			Type: graphql.NewList(RoleCountType),
			Resolve: func(_ graphql.ResolveParams) (interface{}, error) {
				return ResolveRoleDistribution(db)
			},
		},
		// Table: most recent signups
		"dashboardRecentUsers": &graphql.Field{
			Type: graphql.NewList(RecentUserType),
			Args: graphql.FieldConfigArgument{
				"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 5},
			},
			Resolve: func(p graphql.ResolveParams) (interface{}, error) {
				limit := p.Args["limit"].(int)
				return ResolveRecentUsers(db, limit)
			},
		},
	}
}
