package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/user/cookbook-go/apperror"
	"github.com/user/cookbook-go/db"
)

// Service is the authentication API used by the handlers and the middleware.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, req LoginRequest, userAgent string) (*TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error)
	Logout(ctx context.Context, sessionID string) error
	// SignInWithProvider upserts the user behind an OAuth profile and opens a session.
	SignInWithProvider(ctx context.Context, profile *Profile, userAgent string) (*TokenResponse, error)
	GetUser(ctx context.Context, userID string) (*User, error)
	SessionValidator
}

// SessionValidator resolves a session id to a live session.
type SessionValidator interface {
	ValidateSession(ctx context.Context, sessionID string) (*Session, error)
}

// AuthService implements Service over PostgreSQL.
type AuthService struct {
	pool   *pgxpool.Pool
	tokens *TokenIssuer
	now    func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(pool *pgxpool.Pool, tokens *TokenIssuer) *AuthService {
	return &AuthService{pool: pool, tokens: tokens, now: time.Now}
}

const userColumns = `id, email, name, image, password_hash, created_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Image, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an email/password user. The email is stored lower-cased.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash := string(hashed)

	var user *User
	err = db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		user, err = insertUser(ctx, tx, &email, strings.TrimSpace(req.Name), nil, &hash)
		if err != nil {
			return err
		}
		return insertAccount(ctx, tx, user.ID, ProviderPassword, user.ID)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "users_email_key") {
			return nil, apperror.NewConflictError("email already registered", err)
		}
		return nil, db.MapError(err, "user")
	}
	return user, nil
}

// Login checks the password and opens a session. Unknown emails and wrong passwords look the same.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, userAgent string) (*TokenResponse, error) {
	user, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("invalid credentials", nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user", err)
	}
	if user.PasswordHash == nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	return s.openSession(ctx, s.pool, user, userAgent)
}

// Refresh issues a new access token for the session named by a valid refresh token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}
	session, err := s.ValidateSession(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != claims.UserID {
		return nil, apperror.NewAuthError("invalid refresh token", nil)
	}
	access, expiresAt, err := s.tokens.IssueAccess(session.UserID, session.ID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue access token", err)
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(expiresAt.Sub(s.now()).Seconds()),
	}, nil
}

// Logout revokes the session. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE sessions SET revoked_at = $2 WHERE id = $1 AND revoked_at IS NULL`, sessionID, s.now())
	if err != nil {
		return apperror.NewDatabaseError("failed to revoke session", err)
	}
	return nil
}

// SignInWithProvider finds the user linked to (provider, providerAccountId). Failing that it links
// the profile to the user owning the same verified email, and failing that it creates a new user.
func (s *AuthService) SignInWithProvider(ctx context.Context, profile *Profile, userAgent string) (*TokenResponse, error) {
	var resp *TokenResponse
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		user, err := s.resolveProviderUser(ctx, tx, profile)
		if err != nil {
			return err
		}
		resp, err = s.openSession(ctx, tx, user, userAgent)
		return err
	})
	if err != nil {
		return nil, db.MapError(err, "account")
	}
	return resp, nil
}

func (s *AuthService) resolveProviderUser(ctx context.Context, tx pgx.Tx, p *Profile) (*User, error) {
	user, err := scanUser(tx.QueryRow(ctx, `
		SELECT u.id, u.email, u.name, u.image, u.password_hash, u.created_at
		FROM accounts a JOIN users u ON u.id = a.user_id
		WHERE a.provider = $1 AND a.provider_account_id = $2`, p.Provider, p.ProviderAccountID))
	if err == nil {
		// keep the profile fresh without overwriting what the user edited themselves
		_, err = tx.Exec(ctx, `
			UPDATE users SET
				name = CASE WHEN name = '' THEN $2 ELSE name END,
				image = COALESCE(image, NULLIF($3, '')),
				updated_at = now()
			WHERE id = $1`, user.ID, p.Name, p.Image)
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	if p.Email != "" && p.EmailVerified {
		user, err = scanUser(tx.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, p.Email))
		switch {
		case err == nil:
			if err := insertAccount(ctx, tx, user.ID, p.Provider, p.ProviderAccountID); err != nil {
				return nil, err
			}
			return user, nil
		case !errors.Is(err, pgx.ErrNoRows):
			return nil, err
		}
	}

	var email *string
	if p.Email != "" && p.EmailVerified {
		email = &p.Email
	}
	var image *string
	if p.Image != "" {
		image = &p.Image
	}
	user, err = insertUser(ctx, tx, email, p.Name, image, nil)
	if err != nil {
		return nil, err
	}
	if err := insertAccount(ctx, tx, user.ID, p.Provider, p.ProviderAccountID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser loads a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*User, error) {
	user, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err != nil {
		return nil, db.MapError(err, "user")
	}
	return user, nil
}

// ValidateSession returns the session if it exists and is neither revoked nor expired.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, user_agent, expires_at, revoked_at, created_at
		FROM sessions WHERE id = $1`, sessionID).
		Scan(&sess.ID, &sess.UserID, &sess.UserAgent, &sess.ExpiresAt, &sess.RevokedAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewAuthError("session not found", nil)
		}
		return nil, apperror.NewDatabaseError("failed to load session", err)
	}
	if !sess.Live(s.now()) {
		return nil, apperror.NewAuthError("session expired", nil)
	}
	return &sess, nil
}

// PurgeSessions deletes sessions that expired or were revoked before now-retention.
func (s *AuthService) PurgeSessions(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention)
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions WHERE expires_at < $1 OR revoked_at < $1`, cutoff)
	if err != nil {
		return 0, apperror.NewDatabaseError("failed to purge sessions", err)
	}
	return tag.RowsAffected(), nil
}

func (s *AuthService) openSession(ctx context.Context, q db.Querier, user *User, userAgent string) (*TokenResponse, error) {
	sessionID := uuid.NewString()
	expiresAt := s.now().Add(s.tokens.RefreshDuration())
	if len(userAgent) > 512 {
		userAgent = userAgent[:512]
	}
	_, err := q.Exec(ctx,
		`INSERT INTO sessions (id, user_id, user_agent, expires_at) VALUES ($1, $2, $3, $4)`,
		sessionID, user.ID, userAgent, expiresAt)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to create session", err)
	}
	resp, err := s.tokens.IssuePair(user.ID, sessionID)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue tokens", err)
	}
	resp.User = user
	return resp, nil
}

func insertUser(ctx context.Context, q db.Querier, email *string, name string, image, passwordHash *string) (*User, error) {
	return scanUser(q.QueryRow(ctx, `
		INSERT INTO users (id, email, name, image, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns, uuid.NewString(), email, name, image, passwordHash))
}

func insertAccount(ctx context.Context, q db.Querier, userID, provider, providerAccountID string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO accounts (id, user_id, provider, provider_account_id)
		VALUES ($1, $2, $3, $4)`, uuid.NewString(), userID, provider, providerAccountID)
	return err
}
