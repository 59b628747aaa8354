package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/httpjson"
	"github.com/user/cookbook-go/logging"
)

// Handlers exposes the auth endpoints under /api/auth.
type Handlers struct {
	service     Service
	providers   map[string]*Provider
	cookies     CookieSettings
	tokens      *TokenIssuer
	frontendURL string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(service Service, providers map[string]*Provider, tokens *TokenIssuer, cookies CookieSettings, frontendURL string) *Handlers {
	return &Handlers{
		service:     service,
		providers:   providers,
		cookies:     cookies,
		tokens:      tokens,
		frontendURL: frontendURL,
	}
}

// RegisterRoutes mounts the auth routes on r (expected to be /api/auth).
func (h *Handlers) RegisterRoutes(r chi.Router, authn *Authenticator) {
	r.Get("/providers", h.HandleListProviders())
	r.Get("/{provider}/login", h.HandleOAuthLogin())
	r.Get("/callback/{provider}", h.HandleOAuthCallback())
	r.Post("/register", h.HandleRegister())
	r.Post("/login", h.HandleLogin())
	r.Post("/refresh", h.HandleRefreshToken())

	r.Group(func(r chi.Router) {
		r.Use(authn.RequireUser)
		r.Post("/logout", h.HandleLogout())
		r.Get("/session", h.HandleSession())
	})
}

// HandleListProviders godoc
// @Summary List OAuth providers
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.ProvidersResponse
// @Router /api/auth/providers [get]
func (h *Handlers) HandleListProviders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpjson.WriteJSON(w, http.StatusOK, ProvidersResponse{Providers: ProviderNames(h.providers)})
	}
}

// HandleOAuthLogin godoc
// @Summary Start OAuth sign-in
// @Description Redirects to the provider's consent page. A short-lived oauth_state cookie guards the callback.
// @Tags Auth
// @Param provider path string true "google, discord or github"
// @Success 302
// @Failure 404 {object} apperror.ErrorResponse "Unknown or disabled provider"
// @Router /api/auth/{provider}/login [get]
func (h *Handlers) HandleOAuthLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := h.providers[chi.URLParam(r, "provider")]
		if !ok {
			httpjson.WriteError(w, r, apperror.NewNotFoundError("unknown provider", nil))
			return
		}
		state := oauth2.GenerateVerifier()
		h.cookies.setState(w, provider.Name, state)
		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	}
}

// HandleOAuthCallback godoc
// @Summary OAuth callback
// @Description Exchanges the code, upserts the user, opens a session, sets the session cookie and redirects to the frontend.
// @Tags Auth
// @Param provider path string true "google, discord or github"
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by the login endpoint"
// @Success 302
// @Failure 400 {object} apperror.ErrorResponse "State mismatch or provider denied access"
// @Failure 404 {object} apperror.ErrorResponse "Unknown or disabled provider"
// @Failure 502 {object} apperror.ErrorResponse "Provider error"
// @Router /api/auth/callback/{provider} [get]
func (h *Handlers) HandleOAuthCallback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		provider, ok := h.providers[chi.URLParam(r, "provider")]
		if !ok {
			httpjson.WriteError(w, r, apperror.NewNotFoundError("unknown provider", nil))
			return
		}
		query := r.URL.Query()
		if denied := query.Get("error"); denied != "" {
			httpjson.WriteError(w, r, apperror.NewBadRequestError("authorization failed: "+denied, nil))
			return
		}

		cookie, err := r.Cookie(stateCookieName)
		if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
			httpjson.WriteError(w, r, apperror.NewBadRequestError("invalid oauth state", nil))
			return
		}
		h.cookies.clearState(w, provider.Name)

		code := query.Get("code")
		if code == "" {
			httpjson.WriteError(w, r, apperror.NewBadRequestError("missing authorization code", nil))
			return
		}

		profile, err := provider.Exchange(r.Context(), code)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		resp, err := h.service.SignInWithProvider(r.Context(), profile, r.UserAgent())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		logging.FromContext(r.Context()).Info(r.Context(), "oauth sign-in",
			zap.String("provider", provider.Name), zap.String("user_id", resp.User.ID))

		h.cookies.setSession(w, resp.AccessToken, h.tokens.AccessDuration())
		http.Redirect(w, r, h.frontendURL, http.StatusFound)
	}
}

// HandleRegister godoc
// @Summary Register with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param registerBody body auth.RegisterRequest true "User registration details"
// @Success 201 {object} auth.User
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 409 {object} apperror.ErrorResponse "Email already registered"
// @Router /api/auth/register [post]
func (h *Handlers) HandleRegister() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		user, err := h.service.Register(r.Context(), req)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusCreated, user)
	}
}

// HandleLogin godoc
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param loginBody body auth.LoginRequest true "Credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid credentials"
// @Router /api/auth/login [post]
func (h *Handlers) HandleLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		resp, err := h.service.Login(r.Context(), req, r.UserAgent())
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		h.cookies.setSession(w, resp.AccessToken, h.tokens.AccessDuration())
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleRefreshToken godoc
// @Summary Refresh the access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param refreshBody body auth.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} auth.TokenResponse
// @Failure 401 {object} apperror.ErrorResponse "Invalid, expired or revoked refresh token"
// @Router /api/auth/refresh [post]
func (h *Handlers) HandleRefreshToken() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshTokenRequest
		if err := httpjson.Decode(w, r, &req); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		resp, err := h.service.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		h.cookies.setSession(w, resp.AccessToken, h.tokens.AccessDuration())
		httpjson.WriteJSON(w, http.StatusOK, resp)
	}
}

// HandleLogout godoc
// @Summary Log out
// @Description Revokes the current session and clears the session cookie.
// @Tags Auth
// @Success 204
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /api/auth/logout [post]
func (h *Handlers) HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		if err := h.service.Logout(r.Context(), id.SessionID); err != nil {
			httpjson.WriteError(w, r, err)
			return
		}
		h.cookies.ClearSession(w)
		httpjson.NoContent(w)
	}
}

// HandleSession godoc
// @Summary Current session
// @Tags Auth
// @Produce json
// @Success 200 {object} auth.SessionResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Security BearerAuth
// @Router /api/auth/session [get]
func (h *Handlers) HandleSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := IdentityFromContext(r.Context())
		user, err := h.service.GetUser(r.Context(), id.UserID)
		if err != nil {
			if apperror.IsNotFound(err) {
				err = apperror.NewAuthError("session user no longer exists", err)
			}
			httpjson.WriteError(w, r, err)
			return
		}
		httpjson.WriteJSON(w, http.StatusOK, SessionResponse{User: user, SessionID: id.SessionID})
	}
}
