package auth

import "time"

// User is the account holder as seen by the auth endpoints.
type User struct {
	ID           string    `json:"id" example:"7d5c2c8e-6a0e-4a43-9d0e-3f1d4b5a9c11"`
	Email        *string   `json:"email,omitempty" example:"cook@example.com"`
	Name         string    `json:"name" example:"Ada"`
	Image        *string   `json:"image,omitempty"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Account links a user to one external identity.
type Account struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Provider          string    `json:"provider"`
	ProviderAccountID string    `json:"providerAccountId"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Session is a server-side login. Tokens are only honoured while the session is live.
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	UserAgent string     `json:"userAgent"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Live reports whether the session can still authenticate requests at now.
func (s *Session) Live(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// Profile is what an OAuth provider tells us about the person signing in.
type Profile struct {
	Provider          string
	ProviderAccountID string
	Email             string
	EmailVerified     bool
	Name              string
	Image             string
}
