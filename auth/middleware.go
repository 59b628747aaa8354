package auth

import (
	"net/http"
	"strings"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/httpjson"
)

// Authenticator resolves the caller from a bearer token or the session cookie.
type Authenticator struct {
	tokens     *TokenIssuer
	sessions   SessionValidator
	cookieName string
}

// NewAuthenticator creates the middleware factory.
func NewAuthenticator(tokens *TokenIssuer, sessions SessionValidator, cookieName string) *Authenticator {
	return &Authenticator{tokens: tokens, sessions: sessions, cookieName: cookieName}
}

// tokenFromRequest prefers the Authorization header and falls back to the session cookie.
func (a *Authenticator) tokenFromRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
			return "", apperror.NewAuthError("Authorization header format must be Bearer {token}", nil)
		}
		return strings.TrimSpace(parts[1]), nil
	}
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}
	return "", apperror.NewAuthError("authentication required", nil)
}

func (a *Authenticator) authenticate(r *http.Request) (Identity, error) {
	raw, err := a.tokenFromRequest(r)
	if err != nil {
		return Identity{}, err
	}
	claims, err := a.tokens.Parse(raw, tokenTypeAccess)
	if err != nil {
		return Identity{}, apperror.NewAuthError("invalid token", err)
	}
	session, err := a.sessions.ValidateSession(r.Context(), claims.SessionID)
	if err != nil {
		return Identity{}, err
	}
	if session.UserID != claims.UserID {
		return Identity{}, apperror.NewAuthError("invalid token", nil)
	}
	return Identity{UserID: session.UserID, SessionID: session.ID}, nil
}

// RequireUser rejects anonymous requests with 401.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authenticate(r)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContextWithIdentity(r.Context(), id)))
	})
}

// OptionalUser attaches the caller when credentials are present and valid, and otherwise
// lets the request through anonymously. Database failures still surface as 500.
func (a *Authenticator) OptionalUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := a.authenticate(r)
		if err != nil {
			if apperror.IsAuthError(err) {
				next.ServeHTTP(w, r)
				return
			}
			httpjson.WriteError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(NewContextWithIdentity(r.Context(), id)))
	})
}
