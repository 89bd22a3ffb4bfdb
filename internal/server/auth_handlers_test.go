package server

import (
	"net/http"
	"testing"

	"blogfeed/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authJSON struct {
	Token string `json:"token"`
	User  struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, "")
	creds := map[string]string{
		"username": "newbie",
		"email":    "newbie@example.com",
		"password": "SecurePass12!@",
	}

	resp := env.postJSON(t, "/auth/signup", creds, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	signup := decode[authJSON](t, resp)
	assert.Equal(t, "newbie", signup.User.Username)
	assert.Empty(t, signup.User.Email, "email is never serialized")

	id, err := middleware.ParseToken(testJWTSecret, signup.Token)
	require.NoError(t, err)
	assert.Equal(t, signup.User.ID, id)

	resp = env.postJSON(t, "/auth/signup", creds, "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = env.postJSON(t, "/auth/login", map[string]string{"username": "newbie", "password": "SecurePass12!@"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[authJSON](t, resp)

	// The token works on an authenticated route.
	assert.Equal(t, http.StatusOK, env.get(t, "/follow/", login.Token).StatusCode)

	resp = env.postJSON(t, "/auth/login", map[string]string{"username": "newbie", "password": "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestSignup_Validation(t *testing.T) {
	env := newTestEnv(t, "")

	resp := env.postJSON(t, "/auth/signup", map[string]string{"username": "ok_name", "email": "bad", "password": "SecurePass12!@"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.postJSON(t, "/auth/signup", map[string]string{"username": "ok_name", "email": "ok@example.com", "password": "short"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
