package kakao

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "good-code" || r.PostForm.Get("client_id") != "rest-key" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant", "error_description": "bad code"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"access_token": "access-1",
			"token_type":   "bearer",
			"expires_in":   21599,
		})
	})
	mux.HandleFunc("/v2/user/me", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"code": -401, "msg": "this access token does not exist"})
			return
		}
		_, _ = w.Write([]byte(`{"id":123456789,"kakao_account":{"email":"User@Kakao.com","is_email_verified":true,"profile":{"nickname":"김카카오"}}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return NewClient(Config{
		RestAPIKey:  "rest-key",
		RedirectURI: "http://localhost:8080/api/auth/kakao/callback",
		AuthBaseURL: srv.URL,
		APIBaseURL:  srv.URL,
	})
}

func TestClient_AuthorizeURL(t *testing.T) {
	c := NewClient(Config{
		RestAPIKey:  "rest-key",
		RedirectURI: "http://localhost:8080/api/auth/kakao/callback",
		AuthBaseURL: "https://kauth.kakao.com",
	})

	u, err := url.Parse(c.AuthorizeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "kauth.kakao.com", u.Host)
	assert.Equal(t, "/oauth/authorize", u.Path)
	assert.Equal(t, "rest-key", u.Query().Get("client_id"))
	assert.Equal(t, "code", u.Query().Get("response_type"))
	assert.Equal(t, "http://localhost:8080/api/auth/kakao/callback", u.Query().Get("redirect_uri"))
	assert.Equal(t, "xyz", u.Query().Get("state"))
}

func TestClient_ExchangeAndProfile(t *testing.T) {
	c := newTestClient(newTestServer(t))
	ctx := context.Background()

	token, err := c.ExchangeCode(ctx, "good-code")
	require.NoError(t, err)
	assert.Equal(t, "access-1", token.AccessToken)

	profile, err := c.GetProfile(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "123456789", profile.IDString())
	assert.Equal(t, "User@Kakao.com", profile.Account.Email)
	assert.Equal(t, "user@kakao.com", profile.VerifiedEmail())

	profile.Account.IsEmailVerified = false
	assert.Empty(t, profile.VerifiedEmail())
	assert.Equal(t, "김카카오", profile.Account.Profile.Nickname)
}

func TestClient_ExchangeRejected(t *testing.T) {
	c := newTestClient(newTestServer(t))

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrTokenExchange)
}

func TestClient_ProfileRejected(t *testing.T) {
	c := newTestClient(newTestServer(t))

	_, err := c.GetProfile(context.Background(), "wrong-token")
	assert.ErrorIs(t, err, ErrProfileResponse)
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Config{AuthBaseURL: "http://127.0.0.1:1"})
	assert.False(t, c.Configured())

	_, err := c.ExchangeCode(context.Background(), "code")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
