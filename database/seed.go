package database

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v2"

	"github.com/userdesk/console-backend/model"
)

// SeedConfig is the YAML bootstrap file listing users to create at startup.
// Passwords are plaintext in the file and hashed before storage.
type SeedConfig struct {
	Users []SeedUser `yaml:"users"`
}

// SeedUser is a single bootstrap user entry.
type SeedUser struct {
	Name        string `yaml:"name"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	Role        string `yaml:"role,omitempty"`
	Status      string `yaml:"status,omitempty"`
	AccountRole string `yaml:"account_role,omitempty"`
}

// SeedFromEnv applies the seed config named by SEED_CONFIG_PATH, if set.
// Called once at startup; existing emails are left untouched.
func SeedFromEnv(db DBConnection) {
	path := GetEnvDefault("SEED_CONFIG_PATH", "")
	if path == "" {
		return
	}

	created, err := ApplySeedFile(context.Background(), db, path)
	if err != nil {
		logger.Sugar().Warnf("Seed apply failed: %v", err)
		return
	}
	logger.Sugar().Infof("Seed apply complete: %d users created", created)
}

// ApplySeedFile loads a seed config from disk and applies it.
func ApplySeedFile(ctx context.Context, db DBConnection, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed config: %w", err)
	}

	var config SeedConfig
	if err := yaml.Unmarshal(content, &config); err != nil {
		return 0, fmt.Errorf("failed to parse seed config: %w", err)
	}

	return ApplySeed(ctx, db, &config)
}

// ApplySeed creates the users in the config that do not already exist.
// Invalid entries are skipped with a warning so one bad row cannot block
// the rest of the bootstrap.
func ApplySeed(ctx context.Context, db DBConnection, config *SeedConfig) (int, error) {
	created := 0

	for _, entry := range config.Users {
		user, err := seedUserToModel(entry)
		if err != nil {
			logger.Sugar().Warnf("Skipping seed user %q: %v", entry.Email, err)
			continue
		}

		existing, err := FindUserKeyByEmail(ctx, db.Database, user.Email)
		if err != nil {
			return created, fmt.Errorf("failed to check for existing user: %w", err)
		}
		if existing != "" {
			continue
		}

		if _, err := db.Collections["users"].CreateDocument(ctx, user); err != nil {
			return created, fmt.Errorf("failed to create seed user %q: %w", user.Email, err)
		}
		created++
	}

	return created, nil
}

// newUserKey generates a document key for a new user. Arango would assign
// one automatically, but a UUID keeps keys uniform with CSV-imported users.
func newUserKey() string {
	return uuid.New().String()
}

func seedUserToModel(entry SeedUser) (*model.User, error) {
	if err := model.ValidateName(entry.Name); err != nil {
		return nil, err
	}
	if err := model.ValidateEmail(entry.Email); err != nil {
		return nil, err
	}
	if err := model.ValidatePassword(entry.Password); err != nil {
		return nil, err
	}

	user := model.NewUser(entry.Name, entry.Email)
	user.Key = newUserKey()

	hash, err := bcrypt.GenerateFromPassword([]byte(entry.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)

	if entry.Role != "" {
		role := model.JobRole(entry.Role)
		if !role.Valid() {
			return nil, fmt.Errorf("invalid role: %s", entry.Role)
		}
		user.Role = role
	}
	if entry.Status != "" {
		status := model.Status(entry.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status: %s", entry.Status)
		}
		user.Status = status
	}
	if entry.AccountRole != "" {
		accountRole := model.AccountRole(entry.AccountRole)
		if !accountRole.Valid() {
			return nil, fmt.Errorf("invalid account_role: %s", entry.AccountRole)
		}
		user.AccountRole = accountRole
	}

	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	return user, nil
}
