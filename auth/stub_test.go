package auth

import (
	"context"
	"time"

	"github.com/user/cookbook-go/apperror"
)

// stubService is an in-memory Service for handler and middleware tests.
type stubService struct {
	tokens   *TokenIssuer
	sessions map[string]*Session
	users    map[string]*User
	dbErr    error

	signedIn  *Profile
	loggedOut string
}

func newStubService(tokens *TokenIssuer) *stubService {
	return &stubService{
		tokens:   tokens,
		sessions: map[string]*Session{},
		users:    map[string]*User{},
	}
}

func (s *stubService) addSession(userID, sessionID string) string {
	s.users[userID] = &User{ID: userID, Name: "Cook " + userID}
	s.sessions[sessionID] = &Session{ID: sessionID, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	token, _, err := s.tokens.IssueAccess(userID, sessionID)
	if err != nil {
		panic(err)
	}
	return token
}

func (s *stubService) Register(_ context.Context, req RegisterRequest) (*User, error) {
	for _, u := range s.users {
		if u.Email != nil && *u.Email == req.Email {
			return nil, apperror.NewConflictError("email already registered", nil)
		}
	}
	email := req.Email
	u := &User{ID: "new-user", Email: &email, Name: req.Name}
	s.users[u.ID] = u
	return u, nil
}

func (s *stubService) Login(_ context.Context, req LoginRequest, _ string) (*TokenResponse, error) {
	if req.Password != "correct-horse" {
		return nil, apperror.NewAuthError("invalid credentials", nil)
	}
	token := s.addSession("u-login", "s-login")
	return &TokenResponse{AccessToken: token, TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func (s *stubService) Refresh(_ context.Context, refreshToken string) (*TokenResponse, error) {
	claims, err := s.tokens.Parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, apperror.NewAuthError("invalid refresh token", err)
	}
	access, _, _ := s.tokens.IssueAccess(claims.UserID, claims.SessionID)
	return &TokenResponse{AccessToken: access, RefreshToken: refreshToken, TokenType: "Bearer"}, nil
}

func (s *stubService) Logout(_ context.Context, sessionID string) error {
	s.loggedOut = sessionID
	now := time.Now()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.RevokedAt = &now
	}
	return nil
}

func (s *stubService) SignInWithProvider(_ context.Context, p *Profile, _ string) (*TokenResponse, error) {
	s.signedIn = p
	token := s.addSession("u-oauth", "s-oauth")
	return &TokenResponse{AccessToken: token, TokenType: "Bearer", User: s.users["u-oauth"]}, nil
}

func (s *stubService) GetUser(_ context.Context, userID string) (*User, error) {
	if u, ok := s.users[userID]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFoundError("user not found", nil)
}

func (s *stubService) ValidateSession(_ context.Context, sessionID string) (*Session, error) {
	if s.dbErr != nil {
		return nil, s.dbErr
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, apperror.NewAuthError("session not found", nil)
	}
	if !sess.Live(time.Now()) {
		return nil, apperror.NewAuthError("session expired", nil)
	}
	return sess, nil
}
