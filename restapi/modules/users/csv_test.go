package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/console-backend/model"
	"github.com/userdesk/console-backend/restapi/modules/auth"
)

func TestValidateCSVHeader(t *testing.T) {
	tests := []struct {
		name    string
		header  []string
		wantErr string
	}{
		{
			name:   "required columns only",
			header: []string{"name", "email", "password"},
		},
		{
			name:   "all columns in any order",
			header: []string{"account_role", "password", "name", "status", "email", "role"},
		},
		{
			name:   "case and whitespace tolerated",
			header: []string{" Name ", "EMAIL", "password"},
		},
		{
			name:    "missing required column",
			header:  []string{"name", "email"},
			wantErr: "Missing required columns: password",
		},
		{
			name:    "unknown column rejected",
			header:  []string{"name", "email", "password", "salary"},
			wantErr: "Unknown columns: salary",
		},
		{
			name:    "duplicate column rejected",
			header:  []string{"name", "email", "password", "email"},
			wantErr: "Duplicate columns: email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			columns, errMsg := validateCSVHeader(tt.header)
			if tt.wantErr != "" {
				assert.Equal(t, tt.wantErr, errMsg)
				return
			}
			require.Empty(t, errMsg)
			assert.Contains(t, columns, "name")
			assert.Contains(t, columns, "email")
			assert.Contains(t, columns, "password")
		})
	}
}

func TestRowToUser(t *testing.T) {
	columns := map[string]int{
		"name": 0, "email": 1, "password": 2, "role": 3, "status": 4, "account_role": 5,
	}

	t.Run("full row", func(t *testing.T) {
		user, errs := rowToUser([]string{"Ada", "Ada@Example.com", "pw", "manager", "inactive", "admin"}, columns)
		require.Empty(t, errs)
		assert.Equal(t, "Ada", user.Name)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, model.JobManager, user.Role)
		assert.Equal(t, model.StatusInactive, user.Status)
		assert.Equal(t, model.RoleAdmin, user.AccountRole)
		assert.NotEmpty(t, user.Key)
		assert.True(t, auth.CheckPasswordHash("pw", user.PasswordHash))
	})

	t.Run("optional columns default", func(t *testing.T) {
		user, errs := rowToUser([]string{"Ada", "ada@example.com", "pw"}, map[string]int{
			"name": 0, "email": 1, "password": 2,
		})
		require.Empty(t, errs)
		assert.Equal(t, model.JobRole(""), user.Role)
		assert.Equal(t, model.StatusActive, user.Status)
		assert.Equal(t, model.RoleEndUser, user.AccountRole)
	})

	t.Run("all failures collected", func(t *testing.T) {
		_, errs := rowToUser([]string{"A", "not-an-email", "", "ceo", "frozen", "root"}, columns)
		assert.Len(t, errs, 6)
	})

	t.Run("short record treated as empty cells", func(t *testing.T) {
		_, errs := rowToUser([]string{"Ada"}, columns)
		assert.NotEmpty(t, errs)
	})
}
