package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/xiebiao/bookmarket/internal/domain/user"
)

func newTestServer(t *testing.T, verified bool) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.PostForm.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		if verified {
			_, _ = w.Write([]byte(`{"id":"g-1","email":"Ann@Example.com","verified_email":true,"name":"Ann","picture":"https://img/a.png"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"g-2","email":"x@example.com","verified_email":false}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_AuthCodeURL(t *testing.T) {
	p := New("client-id", "secret", "http://localhost:8080/api/v1/auth/google/callback")
	raw := p.AuthCodeURL("state-123")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", u.Host)
	assert.Equal(t, "state-123", u.Query().Get("state"))
	assert.Equal(t, "client-id", u.Query().Get("client_id"))
	assert.Equal(t, user.ProviderGoogle, p.Name())
}

func TestProvider_Exchange(t *testing.T) {
	srv := newTestServer(t, true)
	p := New("id", "secret", "http://cb", WithEndpoint(oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo"))

	profile, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, user.ProviderGoogle, profile.Provider)
	assert.Equal(t, "g-1", profile.ProviderID)
	assert.Equal(t, "Ann@Example.com", profile.Email)
	assert.Equal(t, "https://img/a.png", profile.Image)
}

func TestProvider_ExchangeUnverifiedEmail(t *testing.T) {
	srv := newTestServer(t, false)
	p := New("id", "secret", "http://cb", WithEndpoint(oauth2.Endpoint{
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}, srv.URL+"/userinfo"))

	_, err := p.Exchange(context.Background(), "good-code")
	assert.Error(t, err)
}
