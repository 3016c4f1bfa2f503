package client

import (
	"context"
	"errors"
)

// ErrUnauthenticated signals that no session is present. Callers redirect
// to login; there is no message payload to render.
var ErrUnauthenticated = errors.New("not authenticated")

// Identity describes the logged-in caller. The API has no profile endpoint,
// so the ID is a fixed placeholder and the display name falls back to the
// role.
type Identity struct {
	ID          string
	DisplayName string
	Role        Role
}

// AuthProvider implements the console's auth operations over the client.
type AuthProvider struct {
	client *Client
}

// NewAuthProvider returns an auth provider bound to the client's session
func NewAuthProvider(c *Client) *AuthProvider {
	return &AuthProvider{client: c}
}

// Login exchanges credentials for a token and persists the session.
// Failures propagate untouched so the caller sees the server's message.
func (a *AuthProvider) Login(ctx context.Context, username, password string) error {
	resp, err := a.client.Request(ctx, "POST", "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	if err != nil {
		return err
	}

	token, _ := resp.Body["token"].(string)
	role, _ := resp.Body["account_role"].(string)

	return a.client.Session().Set(token, Role(role))
}

// Logout clears the persisted session. Always succeeds locally.
func (a *AuthProvider) Logout() error {
	return a.client.Session().Clear()
}

// CheckAuth succeeds iff a token is present.
func (a *AuthProvider) CheckAuth() error {
	if a.client.Session().Token() == "" {
		return ErrUnauthenticated
	}
	return nil
}

// CheckError inspects a request failure. A 401 or 403 clears the session
// and returns true, telling the caller to re-authenticate. Anything else
// leaves the session alone.
func (a *AuthProvider) CheckError(err error) bool {
	var clientErr *Error
	if !errors.As(err, &clientErr) {
		return false
	}
	if !clientErr.IsAuth() {
		return false
	}
	_ = a.client.Session().Clear()
	return true
}

// Identity returns the caller's identity, or ErrUnauthenticated when no
// session is present.
func (a *AuthProvider) Identity() (*Identity, error) {
	session := a.client.Session()
	if session.Token() == "" {
		return nil, ErrUnauthenticated
	}

	role := session.Role()
	displayName := string(role)
	if displayName == "" {
		displayName = "User"
	}

	return &Identity{ID: "current", DisplayName: displayName, Role: role}, nil
}

// Permissions resolves the capability set for the current role. Never fails;
// a missing role yields no capabilities.
func (a *AuthProvider) Permissions() Capabilities {
	return Permissions(a.client.Session().Role())
}
