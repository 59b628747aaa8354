package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	tokenIssuer      = "cookbook"
)

// CustomClaims is the JWT payload. Both token types name the user and the session they belong to.
type CustomClaims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret          []byte
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenIssuer creates an issuer with the configured secret and lifetimes.
func NewTokenIssuer(secret string, accessDuration, refreshDuration time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:          []byte(secret),
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}
}

// AccessDuration is the lifetime of access tokens and of the session cookie.
func (t *TokenIssuer) AccessDuration() time.Duration { return t.accessDuration }

// RefreshDuration is the lifetime of refresh tokens and of session rows.
func (t *TokenIssuer) RefreshDuration() time.Duration { return t.refreshDuration }

func (t *TokenIssuer) sign(userID, sessionID, tokenType string, duration time.Duration) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(duration)
	claims := &CustomClaims{
		UserID:    userID,
		SessionID: sessionID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   userID,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, expiresAt, nil
}

// IssueAccess signs an access token for the session.
func (t *TokenIssuer) IssueAccess(userID, sessionID string) (string, time.Time, error) {
	return t.sign(userID, sessionID, tokenTypeAccess, t.accessDuration)
}

// IssuePair signs an access and a refresh token for the session.
func (t *TokenIssuer) IssuePair(userID, sessionID string) (*TokenResponse, error) {
	access, accessExpiresAt, err := t.IssueAccess(userID, sessionID)
	if err != nil {
		return nil, err
	}
	refresh, _, err := t.sign(userID, sessionID, tokenTypeRefresh, t.refreshDuration)
	if err != nil {
		return nil, err
	}
	return &TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(accessExpiresAt.Sub(t.now()).Seconds()),
	}, nil
}

// Parse verifies signature, expiry, issuer and token type.
func (t *TokenIssuer) Parse(tokenString, expectedType string) (*CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	if claims.TokenType != expectedType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", expectedType, claims.TokenType)
	}
	if claims.UserID == "" || claims.SessionID == "" {
		return nil, errors.New("token is missing user or session")
	}
	return claims, nil
}
