// Package auth provides authentication and authorization types for the REST API.
package auth

// LoginRequest defines the body for credential login. The username field
// carries the user's email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse defines the session info returned to the console.
type LoginResponse struct {
	Token       string `json:"token"`
	AccountRole string `json:"account_role"`
}
