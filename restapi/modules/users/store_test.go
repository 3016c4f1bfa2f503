package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		clause, bindVars := buildFilter(ListParams{})
		assert.Empty(t, clause)
		assert.Empty(t, bindVars)
	})

	t.Run("search is lowered and wrapped", func(t *testing.T) {
		clause, bindVars := buildFilter(ListParams{Search: "Ada"})
		assert.Contains(t, clause, "LIKE(LOWER(u.name), @search)")
		assert.Equal(t, "%ada%", bindVars["search"])
	})

	t.Run("all filters bound", func(t *testing.T) {
		clause, bindVars := buildFilter(ListParams{
			Role: "manager", Status: "active", AccountRole: "admin", Search: "x",
		})
		assert.Contains(t, clause, "u.role == @role")
		assert.Contains(t, clause, "u.status == @status")
		assert.Contains(t, clause, "u.account_role == @accountRole")
		assert.Equal(t, "manager", bindVars["role"])
		assert.Equal(t, "active", bindVars["status"])
		assert.Equal(t, "admin", bindVars["accountRole"])
	})
}

func TestSortClause(t *testing.T) {
	assert.Equal(t, "SORT u.created_at DESC", sortClause(ListParams{}))
	assert.Equal(t, "SORT u.name ASC", sortClause(ListParams{SortField: "name"}))
	assert.Equal(t, "SORT u.name ASC", sortClause(ListParams{SortField: "name", SortOrder: "asc"}))
	assert.Equal(t, "SORT u.email DESC", sortClause(ListParams{SortField: "email", SortOrder: "desc"}))
}

func TestSortFieldWhitelist(t *testing.T) {
	for _, field := range []string{"name", "email", "role", "status", "account_role", "created_at", "updated_at"} {
		assert.True(t, sortFields[field], field)
	}
	assert.False(t, sortFields["password_hash"])
	assert.False(t, sortFields["u.name DESC; DROP"])
}
