// Package model provides data models for the userdesk console backend.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// AccountRole controls what a user may do in the admin console.
type AccountRole string

// Account roles, highest to lowest privilege.
const (
	RoleAdmin          AccountRole = "admin"
	RoleCorporateAdmin AccountRole = "corporate_admin"
	RoleEndUser        AccountRole = "end_user"
)

// Valid reports whether the role is one of the defined account roles.
func (r AccountRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleCorporateAdmin, RoleEndUser:
		return true
	}
	return false
}

// Level returns the hierarchy level of the role. Higher levels include the
// permissions of lower ones; unknown roles get level 0.
func (r AccountRole) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleCorporateAdmin:
		return 2
	case RoleEndUser:
		return 1
	}
	return 0
}

// JobRole is the organizational role of a user, independent of permissions.
type JobRole string

// Job roles.
const (
	JobManager   JobRole = "manager"
	JobDeveloper JobRole = "developer"
)

// Valid reports whether the job role is defined. The empty value is valid
// because the field is optional.
func (j JobRole) Valid() bool {
	switch j {
	case "", JobManager, JobDeveloper:
		return true
	}
	return false
}

// Status marks whether an account can log in.
type Status string

// Account statuses.
const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Valid reports whether the status is defined.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// User represents a user document in the users collection.
type User struct {
	Key          string      `json:"_key,omitempty"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"password_hash,omitempty"`
	Role         JobRole     `json:"role,omitempty"`
	Status       Status      `json:"status"`
	AccountRole  AccountRole `json:"account_role"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// NewUser creates a user with default status and account role.
func NewUser(name, email string) *User {
	now := time.Now().UTC()
	return &User{
		Name:        name,
		Email:       NormalizeEmail(email),
		Status:      StatusActive,
		AccountRole: RoleEndUser,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Public returns a copy of the user with the password hash removed,
// safe to serialize in API responses.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// IsActive reports whether the account may authenticate.
func (u *User) IsActive() bool {
	return u.Status != StatusInactive
}

var (
	nameRe  = regexp.MustCompile(`^[a-zA-Z0-9\s\-_\.]+$`)
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateName checks the 2-100 character name constraint.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return fmt.Errorf("name must be at least 2 characters")
	}
	if len(name) > 100 {
		return fmt.Errorf("name must not exceed 100 characters")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("name contains invalid characters")
	}
	return nil
}

// ValidateEmail checks email format and the RFC 5321 length limit.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRe.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	if len(email) > 254 {
		return fmt.Errorf("email address is too long")
	}
	return nil
}

// ValidatePassword checks the password constraints used at create time.
// The stored value is always a bcrypt hash; these limits apply to the input.
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}
	if len(password) > 500 {
		return fmt.Errorf("password is too long")
	}
	if strings.TrimSpace(password) != password {
		return fmt.Errorf("password cannot have leading or trailing whitespace")
	}
	return nil
}
