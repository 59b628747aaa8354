package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/config"
)

const maxProfileBytes = 1 << 20

// Provider performs the authorization-code flow against one identity provider
// and turns its user-info response into a Profile.
type Provider struct {
	Name       string
	oauth      *oauth2.Config
	profileURL string
	// emailsURL is consulted when the profile has no public email (GitHub).
	emailsURL string
	parse     func(gjson.Result) Profile
}

// NewProviders builds every provider that has client credentials configured.
// Callback URLs are {baseURL}/api/auth/callback/{provider}.
func NewProviders(cfg *config.AuthConfig, baseURL string) map[string]*Provider {
	providers := make(map[string]*Provider)
	callback := func(name string) string {
		return strings.TrimRight(baseURL, "/") + "/api/auth/callback/" + name
	}

	if cfg.Google.Enabled() {
		providers[ProviderGoogle] = newProvider(ProviderGoogle, &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			Endpoint:     endpoints.Google,
			RedirectURL:  callback(ProviderGoogle),
			Scopes:       []string{"openid", "email", "profile"},
		}, "https://openidconnect.googleapis.com/v1/userinfo", "", parseGoogleProfile)
	}
	if cfg.Discord.Enabled() {
		providers[ProviderDiscord] = newProvider(ProviderDiscord, &oauth2.Config{
			ClientID:     cfg.Discord.ClientID,
			ClientSecret: cfg.Discord.ClientSecret,
			Endpoint:     endpoints.Discord,
			RedirectURL:  callback(ProviderDiscord),
			Scopes:       []string{"identify", "email"},
		}, "https://discord.com/api/users/@me", "", parseDiscordProfile)
	}
	if cfg.GitHub.Enabled() {
		providers[ProviderGitHub] = newProvider(ProviderGitHub, &oauth2.Config{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			Endpoint:     endpoints.GitHub,
			RedirectURL:  callback(ProviderGitHub),
			Scopes:       []string{"read:user", "user:email"},
		}, "https://api.github.com/user", "https://api.github.com/user/emails", parseGitHubProfile)
	}
	return providers
}

func newProvider(name string, oauthCfg *oauth2.Config, profileURL, emailsURL string, parse func(gjson.Result) Profile) *Provider {
	return &Provider{
		Name:       name,
		oauth:      oauthCfg,
		profileURL: profileURL,
		emailsURL:  emailsURL,
		parse:      parse,
	}
}

// ProviderNames returns the configured provider names in a stable order.
func ProviderNames(providers map[string]*Provider) []string {
	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AuthCodeURL is where the browser is sent to sign in.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the signed-in user's profile.
// Any failure talking to the provider is an ExternalServiceError (502).
func (p *Provider) Exchange(ctx context.Context, code string) (*Profile, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("%s rejected the authorization code", p.Name), err)
	}
	client := p.oauth.Client(ctx, token)

	body, err := p.get(ctx, client, p.profileURL)
	if err != nil {
		return nil, err
	}
	profile := p.parse(gjson.ParseBytes(body))
	profile.Provider = p.Name
	if profile.ProviderAccountID == "" {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("%s profile has no account id", p.Name), nil)
	}

	if profile.Email == "" && p.emailsURL != "" {
		emails, err := p.get(ctx, client, p.emailsURL)
		if err != nil {
			return nil, err
		}
		profile.Email, profile.EmailVerified = primaryEmail(gjson.ParseBytes(emails))
	}
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	return &profile, nil
}

func (p *Provider) get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperror.NewInternalError("failed to build provider request", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("failed to reach %s", p.Name), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("failed to read %s response", p.Name), err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperror.NewExternalServiceError(
			fmt.Sprintf("%s returned status %d", p.Name, resp.StatusCode), fmt.Errorf("%s", body))
	}
	if !gjson.ValidBytes(body) {
		return nil, apperror.NewExternalServiceError(fmt.Sprintf("%s returned invalid JSON", p.Name), nil)
	}
	return body, nil
}

func parseGoogleProfile(r gjson.Result) Profile {
	return Profile{
		ProviderAccountID: r.Get("sub").String(),
		Email:             r.Get("email").String(),
		EmailVerified:     r.Get("email_verified").Bool(),
		Name:              r.Get("name").String(),
		Image:             r.Get("picture").String(),
	}
}

func parseDiscordProfile(r gjson.Result) Profile {
	id := r.Get("id").String()
	name := r.Get("global_name").String()
	if name == "" {
		name = r.Get("username").String()
	}
	var image string
	if avatar := r.Get("avatar").String(); avatar != "" && id != "" {
		image = fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.png", id, avatar)
	}
	return Profile{
		ProviderAccountID: id,
		Email:             r.Get("email").String(),
		EmailVerified:     r.Get("verified").Bool(),
		Name:              name,
		Image:             image,
	}
}

func parseGitHubProfile(r gjson.Result) Profile {
	name := r.Get("name").String()
	if name == "" {
		name = r.Get("login").String()
	}
	email := r.Get("email").String()
	return Profile{
		ProviderAccountID: r.Get("id").String(),
		Email:             email,
		// GitHub only shows an email on the profile when the user made it public from a verified address.
		EmailVerified: email != "",
		Name:          name,
		Image:         r.Get("avatar_url").String(),
	}
}

// primaryEmail picks the primary address from a GitHub /user/emails listing,
// falling back to the first verified one.
func primaryEmail(list gjson.Result) (string, bool) {
	var fallback string
	for _, e := range list.Array() {
		if !e.Get("verified").Bool() {
			continue
		}
		if e.Get("primary").Bool() {
			return e.Get("email").String(), true
		}
		if fallback == "" {
			fallback = e.Get("email").String()
		}
	}
	if fallback != "" {
		return fallback, true
	}
	return "", false
}
