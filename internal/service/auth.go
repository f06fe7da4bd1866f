package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"waypost/internal/config"
	"waypost/internal/model"
	"waypost/internal/repository"
)

// AuthService issues and validates the three token kinds: short-lived
// access tokens, server-tracked refresh tokens, and email verification
// tokens. Access and refresh tokens are signed with separate secrets so
// one can never stand in for the other.
type AuthService struct {
	refreshTokenRepo repository.RefreshTokenRepository
	config           *config.Config
}

func NewAuthService(refreshTokenRepo repository.RefreshTokenRepository, cfg *config.Config) *AuthService {
	return &AuthService{
		refreshTokenRepo: refreshTokenRepo,
		config:           cfg,
	}
}

// GenerateTokenPair issues an access token and a refresh token, and
// persists the refresh token's hash so it can be revoked server-side.
func (s *AuthService) GenerateTokenPair(ctx context.Context, userID string) (*model.TokenPair, error) {
	accessToken, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshRaw, expiresAt, err := s.issueRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	record := &model.RefreshToken{
		UserID:    userID,
		TokenHash: s.hashToken(refreshRaw),
		ExpiresAt: expiresAt,
	}
	if err := s.refreshTokenRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &model.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshRaw,
		ExpiresIn:    s.config.AccessTokenMaxAge,
	}, nil
}

// RefreshAccess mints a fresh access token from a valid refresh token.
// The refresh token itself is left in place: it stays valid until it
// expires or is revoked, and presenting it again is not an error.
func (s *AuthService) RefreshAccess(ctx context.Context, refreshRaw string) (*model.TokenPair, string, error) {
	claims, err := s.parseToken(refreshRaw, s.config.RefreshSecret)
	if err != nil {
		return nil, "", model.ErrUnauthenticated
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, "", model.ErrUnauthenticated
	}

	// Signature alone is not enough: the token must still exist in the
	// store, so revocation takes effect immediately.
	record, err := s.refreshTokenRepo.FindByTokenHash(ctx, s.hashToken(refreshRaw))
	if err != nil {
		return nil, "", model.ErrUnauthenticated
	}
	// The hash lookup already binds the record to this exact token, but
	// the stored owner must still match the claim.
	if record.UserID != userID {
		return nil, "", model.ErrUnauthenticated
	}
	if record.IsExpired() {
		return nil, "", model.ErrUnauthenticated
	}

	accessToken, err := s.IssueAccessToken(userID)
	if err != nil {
		return nil, "", fmt.Errorf("generate access token: %w", err)
	}

	return &model.TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   s.config.AccessTokenMaxAge,
	}, userID, nil
}

// RevokeRefreshToken deletes the stored record for the given refresh
// token. Revoking an unknown or already-revoked token succeeds quietly.
func (s *AuthService) RevokeRefreshToken(ctx context.Context, refreshRaw string) error {
	_, err := s.refreshTokenRepo.DeleteByTokenHash(ctx, s.hashToken(refreshRaw))
	return err
}

// RevokeAllUserTokens logs the user out of every session.
func (s *AuthService) RevokeAllUserTokens(ctx context.Context, userID string) error {
	return s.refreshTokenRepo.DeleteAllForUser(ctx, userID)
}

// IssueAccessToken signs a short-lived access token for userID.
func (s *AuthService) IssueAccessToken(userID string) (string, error) {
	return s.signToken(userID, s.config.AccessSecret,
		time.Duration(s.config.AccessTokenMaxAge)*time.Second)
}

// ValidateAccessToken returns the user ID carried by a valid access
// token. Every failure mode collapses to ErrUnauthenticated.
func (s *AuthService) ValidateAccessToken(accessRaw string) (string, error) {
	claims, err := s.parseToken(accessRaw, s.config.AccessSecret)
	if err != nil {
		return "", model.ErrUnauthenticated
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", model.ErrUnauthenticated
	}
	return userID, nil
}

// IssueVerificationToken signs the long-lived token embedded in the
// email confirmation link. It is access-shaped but far longer lived, so
// the link survives an unhurried inbox.
func (s *AuthService) IssueVerificationToken(userID string) (string, error) {
	return s.signToken(userID, s.config.AccessSecret,
		time.Duration(s.config.VerifyTokenMaxAge)*time.Second)
}

// DecodeVerificationToken returns the user ID from a verification
// token. Unlike access validation it distinguishes an expired token
// from a malformed one: the frontend offers a re-send only for the
// former.
func (s *AuthService) DecodeVerificationToken(tokenRaw string) (string, error) {
	claims, err := s.parseToken(tokenRaw, s.config.AccessSecret)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", model.ErrTokenExpired
		}
		return "", model.ErrTokenInvalid
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", model.ErrTokenInvalid
	}
	return userID, nil
}

// DeleteExpiredTokens drops refresh records past their expiry. Run
// periodically; expiry is enforced on every lookup regardless.
func (s *AuthService) DeleteExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.DeleteExpired(ctx)
}

func (s *AuthService) issueRefreshToken(userID string) (string, time.Time, error) {
	ttl := time.Duration(s.config.RefreshTokenMaxAge) * time.Second
	expiresAt := time.Now().Add(ttl)
	raw, err := s.signToken(userID, s.config.RefreshSecret, ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, expiresAt, nil
}

func (s *AuthService) signToken(userID, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(raw, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func (s *AuthService) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
