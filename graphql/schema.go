// Package graphql assembles the root schema served at /api/v1/graphql.
package graphql

import (
	"github.com/graphql-go/graphql"

	"github.com/userdesk/console-backend/database"
	"github.com/userdesk/console-backend/graphql/modules/dashboard"
)

var db database.DBConnection

// InitDB stores the database connection used by the resolvers
func InitDB(conn database.DBConnection) {
	db = conn
}

// CreateSchema builds the root query schema from the module query fields
func CreateSchema() (graphql.Schema, error) {
	fields := graphql.Fields{}
	for name, field := range dashboard.GetQueryFields(db) {
		fields[name] = field
	}

	rootQuery := graphql.NewObject(graphql.ObjectConfig{
		Name:   "Query",
		Fields: fields,
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: rootQuery})
}
