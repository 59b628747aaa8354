package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/config"
)

// fakeProviderServer serves a token endpoint and the given JSON documents by path.
func fakeProviderServer(t *testing.T, docs map[string]string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.Form.Get("code") != "good-code" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "provider-token", "token_type": "bearer", "expires_in": 3600})
	})
	for path, body := range docs {
		body := body
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer provider-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testProvider(srv *httptest.Server, name string, emails bool, parse func(gjson.Result) Profile) *Provider {
	emailsURL := ""
	if emails {
		emailsURL = srv.URL + "/emails"
	}
	return newProvider(name, &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:8080/api/auth/callback/" + name,
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/authorize",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}, srv.URL+"/profile", emailsURL, parse)
}

func TestExchangeGoogleProfile(t *testing.T) {
	srv := fakeProviderServer(t, map[string]string{
		"/profile": `{"sub":"g-123","email":"Ada@Example.com","email_verified":true,"name":"Ada","picture":"https://img/ada.png"}`,
	})
	p := testProvider(srv, ProviderGoogle, false, parseGoogleProfile)

	profile, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, &Profile{
		Provider:          ProviderGoogle,
		ProviderAccountID: "g-123",
		Email:             "ada@example.com",
		EmailVerified:     true,
		Name:              "Ada",
		Image:             "https://img/ada.png",
	}, profile)
}

func TestExchangeGitHubFallsBackToEmailList(t *testing.T) {
	srv := fakeProviderServer(t, map[string]string{
		"/profile": `{"id":4242,"login":"octo","name":null,"email":null,"avatar_url":"https://avatars/octo"}`,
		"/emails": `[{"email":"old@example.com","primary":false,"verified":true},
		             {"email":"octo@example.com","primary":true,"verified":true}]`,
	})
	p := testProvider(srv, ProviderGitHub, true, parseGitHubProfile)

	profile, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "4242", profile.ProviderAccountID)
	assert.Equal(t, "octo", profile.Name)
	assert.Equal(t, "octo@example.com", profile.Email)
	assert.True(t, profile.EmailVerified)
}

func TestExchangeFailuresAreExternalServiceErrors(t *testing.T) {
	srv := fakeProviderServer(t, map[string]string{"/profile": `{"username":"no-id"}`})
	p := testProvider(srv, ProviderDiscord, false, parseDiscordProfile)

	_, err := p.Exchange(context.Background(), "bad-code")
	require.Error(t, err)
	ae, ok := apperror.FromError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, ae.StatusCode())

	_, err = p.Exchange(context.Background(), "good-code")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no account id")
}

func TestParseDiscordProfile(t *testing.T) {
	p := parseDiscordProfile(gjson.Parse(`{"id":"80351110224678912","username":"nelly","global_name":"Nelly","avatar":"8342729096ea3675442027381ff50dfe","verified":true,"email":"nelly@discord.com"}`))
	assert.Equal(t, "80351110224678912", p.ProviderAccountID)
	assert.Equal(t, "Nelly", p.Name)
	assert.Equal(t, "https://cdn.discordapp.com/avatars/80351110224678912/8342729096ea3675442027381ff50dfe.png", p.Image)
	assert.True(t, p.EmailVerified)

	p = parseDiscordProfile(gjson.Parse(`{"id":"1","username":"plain"}`))
	assert.Equal(t, "plain", p.Name)
	assert.Empty(t, p.Image)
}

func TestPrimaryEmailIgnoresUnverified(t *testing.T) {
	email, ok := primaryEmail(gjson.Parse(`[{"email":"a@x.io","primary":true,"verified":false}]`))
	assert.False(t, ok)
	assert.Empty(t, email)
}

func TestNewProvidersOnlyEnabled(t *testing.T) {
	cfg := &config.AuthConfig{
		Google: config.OAuthProviderConfig{ClientID: "id", ClientSecret: "secret"},
		GitHub: config.OAuthProviderConfig{ClientID: "id"},
	}
	providers := NewProviders(cfg, "https://api.example.com/")
	assert.Equal(t, []string{ProviderGoogle}, ProviderNames(providers))

	u, err := url.Parse(providers[ProviderGoogle].AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", u.Query().Get("state"))
	assert.Equal(t, "https://api.example.com/api/auth/callback/google", u.Query().Get("redirect_uri"))
}
