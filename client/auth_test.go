package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginPersistsSession(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		w.Write([]byte(`{"token": "tok-abc", "account_role": "corporate_admin"}`))
	})
	auth := NewAuthProvider(c)

	require.NoError(t, auth.Login(context.Background(), "ca@example.com", "secret"))
	assert.Equal(t, "tok-abc", c.Session().Token())
	assert.Equal(t, RoleCorporateAdmin, c.Session().Role())
}

func TestLoginFailurePropagatesUntouched(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(401)
		w.Write([]byte(`{"detail": "Invalid email or password"}`))
	})
	auth := NewAuthProvider(c)

	err := auth.Login(context.Background(), "x@example.com", "wrong")
	clientErr := asClientError(t, err)
	assert.Equal(t, 401, clientErr.Status)
	assert.Empty(t, c.Session().Token())
}

func TestCheckAuth(t *testing.T) {
	session := NewSession(NewMemoryStorage())
	c := New("http://unused", session)
	auth := NewAuthProvider(c)

	assert.ErrorIs(t, auth.CheckAuth(), ErrUnauthenticated)

	require.NoError(t, session.Set("tok", RoleEndUser))
	assert.NoError(t, auth.CheckAuth())
}

func TestCheckError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantReauth  bool
		wantCleared bool
	}{
		{name: "401 clears the session", err: &Error{Status: 401}, wantReauth: true, wantCleared: true},
		{name: "403 clears the session", err: &Error{Status: 403}, wantReauth: true, wantCleared: true},
		{name: "500 leaves the session", err: &Error{Status: 500}, wantReauth: false, wantCleared: false},
		{name: "network error leaves the session", err: &Error{Status: 0}, wantReauth: false, wantCleared: false},
		{name: "plain error leaves the session", err: assert.AnError, wantReauth: false, wantCleared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := NewSession(NewMemoryStorage())
			require.NoError(t, session.Set("tok", RoleAdmin))
			auth := NewAuthProvider(New("http://unused", session))

			assert.Equal(t, tt.wantReauth, auth.CheckError(tt.err))
			if tt.wantCleared {
				assert.Empty(t, session.Token())
			} else {
				assert.Equal(t, "tok", session.Token())
			}
		})
	}
}

func TestCheckErrorSeesWrappedErrors(t *testing.T) {
	session := NewSession(NewMemoryStorage())
	require.NoError(t, session.Set("tok", RoleAdmin))
	auth := NewAuthProvider(New("http://unused", session))

	// Adapter operations wrap errors with context; the status must survive
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(403)
	})
	data := NewDataProvider(c)
	_, err := data.GetOne(context.Background(), "users", "u1")

	assert.True(t, auth.CheckError(err))
	assert.Empty(t, session.Token())
}

func TestIdentity(t *testing.T) {
	session := NewSession(NewMemoryStorage())
	auth := NewAuthProvider(New("http://unused", session))

	_, err := auth.Identity()
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, session.Set("tok", RoleAdmin))
	identity, err := auth.Identity()
	require.NoError(t, err)
	assert.Equal(t, "current", identity.ID)
	assert.Equal(t, "admin", identity.DisplayName)

	// Token without a role still resolves, with a neutral display name
	require.NoError(t, session.storage.Delete(storageKeyRole))
	identity, err = auth.Identity()
	require.NoError(t, err)
	assert.Equal(t, "User", identity.DisplayName)
}

func TestSessionFileStorageRoundTrip(t *testing.T) {
	path := t.TempDir() + "/session.json"

	first := NewSession(NewFileStorage(path))
	require.NoError(t, first.Set("tok-xyz", RoleAdmin))

	// A fresh session over the same file sees the persisted values
	second := NewSession(NewFileStorage(path))
	assert.Equal(t, "tok-xyz", second.Token())
	assert.Equal(t, RoleAdmin, second.Role())

	require.NoError(t, second.Clear())
	assert.Empty(t, NewSession(NewFileStorage(path)).Token())
}
