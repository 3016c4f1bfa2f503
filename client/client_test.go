package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, NewSession(NewMemoryStorage())), server
}

func asClientError(t *testing.T, err error) *Error {
	t.Helper()
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	return clientErr
}

func TestRequestStatusMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		wantLen int
	}{
		{
			name:   "401 ignores the body entirely",
			status: 401,
			body:   `{"detail": "token expired at 10:31"}`,
			want:   "Authentication required. Please log in again.",
		},
		{
			name:   "503 is a fixed message",
			status: 503,
			body:   `{"detail": "maintenance window"}`,
			want:   "Service temporarily unavailable. Please try again later.",
		},
		{
			name:   "400 prefers the detail string",
			status: 400,
			body:   `{"detail": "Email already registered"}`,
			want:   "Email already registered",
		},
		{
			name:   "400 falls back to a generic message",
			status: 400,
			body:   `{}`,
			want:   "Bad request. Please check your input.",
		},
		{
			name:   "404 prefers the error string",
			status: 404,
			body:   `{"error": "User not found"}`,
			want:   "User not found",
		},
		{
			name:   "500 without a body is generic",
			status: 500,
			body:   ``,
			want:   "Internal server error. Please try again later.",
		},
		{
			name:   "unknown status uses the fallback",
			status: 418,
			body:   `{"detail": "teapot"}`,
			want:   "An unexpected error occurred. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Request(context.Background(), "GET", "/users", nil, nil)
			clientErr := asClientError(t, err)
			assert.Equal(t, tt.status, clientErr.Status)
			assert.Equal(t, tt.want, clientErr.Message)
		})
	}
}

func TestRequestValidationErrorsPreserved(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(422)
		w.Write([]byte(`{"detail": [{"loc": ["body", "email"], "msg": "invalid email"}]}`))
	})

	_, err := c.Request(context.Background(), "POST", "/users", nil, nil)
	clientErr := asClientError(t, err)
	require.Len(t, clientErr.ValidationErrors, 1)
	assert.Equal(t, "invalid email", clientErr.ValidationErrors[0]["msg"])
	assert.True(t, clientErr.IsValidation())
}

func TestRequestParseFailureFallback(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	})

	resp, err := c.Request(context.Background(), "GET", "/users", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "<html>not json</html>", resp.Body["message"])
	assert.Equal(t, "<html>not json</html>", resp.Body["detail"])
}

func TestRequestNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close() // nothing is listening anymore
	c := New(server.URL, NewSession(NewMemoryStorage()))

	_, err := c.Request(context.Background(), "GET", "/users", nil, nil)
	clientErr := asClientError(t, err)
	assert.Equal(t, 0, clientErr.Status)
	assert.Equal(t, "Unable to connect to the server. Please check your connection.", clientErr.Message)
}

func TestRequestAuthHeader(t *testing.T) {
	var gotAuth string
	session := NewSession(NewMemoryStorage())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer server.Close()
	c := New(server.URL, session)

	_, err := c.Request(context.Background(), "GET", "/users", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)

	require.NoError(t, session.Set("tok-123", RoleAdmin))
	_, err = c.Request(context.Background(), "GET", "/users", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", gotAuth)
}

func TestRequestCallerHeadersOverrideDefaults(t *testing.T) {
	var gotContentType string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(`{}`))
	})

	_, err := c.Request(context.Background(), "POST", "/users", nil, map[string]string{
		"Content-Type": "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "text/plain", gotContentType)
}

func TestErrorNotDoubleWrapped(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(404)
		w.Write([]byte(`{"error": "User not found"}`))
	})

	_, err := c.Request(context.Background(), "GET", "/users/x", nil, nil)
	var clientErr *Error
	require.True(t, errors.As(err, &clientErr))
	assert.Equal(t, 404, clientErr.Status)
	assert.Equal(t, "User not found", clientErr.Message)
}
