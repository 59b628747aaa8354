// Package auth handles sign-in for the cookbook service: OAuth with Google, Discord and GitHub,
// email/password accounts, JWT-backed session cookies and the middleware that resolves the
// current user for every other package.
//
// A session is a row in the sessions table. Access and refresh tokens both carry the session id,
// so revoking the row (logout, account deletion, the hourly sweep) invalidates every token issued for it.
package auth

// Provider names as they appear in /api/auth/{provider}/login and in accounts.provider.
const (
	ProviderGoogle   = "google"
	ProviderDiscord  = "discord"
	ProviderGitHub   = "github"
	ProviderPassword = "credentials"
)
