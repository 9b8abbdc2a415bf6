// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// TokenService manages the account API credential for a session: login,
// on-demand refresh, and session-store bookkeeping. Refresh is pull-based:
// nothing runs in the background, and no call is ever retried.
type TokenService struct {
	accounts driven.AccountGateway
	sessions driven.SessionStore
	now      func() time.Time
}

// NewTokenService creates a TokenService.
func NewTokenService(accounts driven.AccountGateway, sessions driven.SessionStore) *TokenService {
	return &TokenService{
		accounts: accounts,
		sessions: sessions,
		now:      time.Now,
	}
}

// Login performs the password grant and stores the resulting credential in
// the session. An empty deviceID is replaced with a generated one, matching
// the app's behavior on a fresh install.
func (s *TokenService) Login(ctx context.Context, sessionID, email, password, deviceID string) (model.Credential, error) {
	if deviceID == "" {
		deviceID = uuid.NewString()
	}

	cred, err := s.accounts.Authenticate(ctx, email, password, deviceID)
	if err != nil {
		return model.Credential{}, err
	}

	if err := s.sessions.PutCredential(ctx, sessionID, cred); err != nil {
		return model.Credential{}, fmt.Errorf("store credential: %w", err)
	}

	slog.Info("logged in", "session_id", sessionID)
	return cred, nil
}

// Refresh exchanges the session's refresh token for a new credential and
// stores it. Returns ErrInvalidCredentials when the session holds no
// credential to refresh.
func (s *TokenService) Refresh(ctx context.Context, sessionID string) (model.Credential, error) {
	cur, err := s.sessions.GetCredential(ctx, sessionID)
	if err != nil {
		return model.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if cur.RefreshToken == "" {
		return model.Credential{}, fmt.Errorf("session has no refresh token: %w", driven.ErrInvalidCredentials)
	}

	cred, err := s.accounts.RefreshToken(ctx, cur.RefreshToken)
	if err != nil {
		return model.Credential{}, err
	}

	if err := s.sessions.PutCredential(ctx, sessionID, cred); err != nil {
		return model.Credential{}, fmt.Errorf("store credential: %w", err)
	}

	slog.Info("token refreshed", "session_id", sessionID)
	return cred, nil
}

// EnsureFresh returns the session's credential, refreshing it first only
// when a recorded expiry has passed. Credentials without a recorded expiry
// are returned as-is; the caller finds out via a 401 if they went stale.
func (s *TokenService) EnsureFresh(ctx context.Context, sessionID string) (model.Credential, error) {
	cred, err := s.sessions.GetCredential(ctx, sessionID)
	if err != nil {
		return model.Credential{}, fmt.Errorf("load credential: %w", err)
	}
	if cred.AccessToken == "" {
		return model.Credential{}, fmt.Errorf("session not logged in: %w", driven.ErrInvalidCredentials)
	}

	if cred.Expired(s.now()) {
		return s.Refresh(ctx, sessionID)
	}
	return cred, nil
}

// Logout clears the session's credential and cached view.
func (s *TokenService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	slog.Info("logged out", "session_id", sessionID)
	return nil
}
