package auth

// RegisterRequest creates an email/password account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254" example:"cook@example.com"`
	Password string `json:"password" validate:"required,min=8,max=128" example:"correct-horse"`
	Name     string `json:"name" validate:"required,notblank,max=100" example:"Ada"`
}

// LoginRequest signs in with email and password.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"cook@example.com"`
	Password string `json:"password" validate:"required" example:"correct-horse"`
}

// RefreshTokenRequest exchanges a refresh token for a new access token.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh. The access token is also set as the session cookie.
type TokenResponse struct {
	AccessToken  string `json:"access_token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type" example:"Bearer"`
	ExpiresIn    int64  `json:"expires_in" example:"86400"` // seconds until the access token expires
	User         *User  `json:"user,omitempty"`
}

// SessionResponse describes the caller's current login.
type SessionResponse struct {
	User      *User  `json:"user"`
	SessionID string `json:"sessionId"`
}

// ProvidersResponse lists the OAuth providers that are configured.
type ProvidersResponse struct {
	Providers []string `json:"providers" example:"google,github"`
}
