package authapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/v1/signup", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"3f0a2c55-8b7e-4e0c-9d55-1e2f3a4b5c6d","email":"me@example.com","user_metadata":{"role":"admin"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "anon-key")
	u, err := c.SignUp(t.Context(), "me@example.com", "s3cret", map[string]any{"role": RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", u.Email)
	assert.False(t, u.IsAdmin(), "a self-assigned user_metadata role grants nothing")

	assert.Equal(t, "me@example.com", got["email"])
	assert.Equal(t, map[string]any{"role": "admin"}, got["data"])
}

func TestSignUpSessionResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"tok","user":{"id":"3f0a2c55-8b7e-4e0c-9d55-1e2f3a4b5c6d","email":"me@example.com"}}`))
	}))
	defer srv.Close()

	u, err := NewClient(srv.URL, "k").SignUp(t.Context(), "me@example.com", "pw", nil)
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", u.Email)
	assert.False(t, u.IsAdmin())
}

func TestSignIn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		_, _ = w.Write([]byte(`{
			"access_token": "jwt",
			"token_type": "bearer",
			"expires_in": 3600,
			"refresh_token": "refresh",
			"user": {"id": "3f0a2c55-8b7e-4e0c-9d55-1e2f3a4b5c6d", "email": "me@example.com", "app_metadata": {"role": "admin"}}
		}`))
	}))
	defer srv.Close()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewClient(srv.URL, "k")
	c.now = func() time.Time { return now }

	tok, u, err := c.SignIn(t.Context(), "me@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "jwt", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)
	assert.Equal(t, now.Add(time.Hour), tok.Expiry)
	assert.True(t, u.IsAdmin())
}

func TestSignInRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
	}))
	defer srv.Close()

	_, _, err := NewClient(srv.URL, "k").SignIn(t.Context(), "me@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.Contains(t, err.Error(), "Invalid login credentials")
}

func TestUserRoleIgnoresUserMetadata(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{
		"email": "me@example.com",
		"user_metadata": {"role": "admin"},
		"app_metadata": {"provider": "email"}
	}`), &u))
	assert.Equal(t, "", u.Role())
	assert.False(t, u.IsAdmin())

	u.AppMetadata["role"] = RoleAdmin
	assert.True(t, u.IsAdmin())
}

func TestUserRoleNil(t *testing.T) {
	var u *User
	assert.Equal(t, "", u.Role())
	assert.False(t, u.IsAdmin())
}
