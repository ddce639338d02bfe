package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// DefaultSessionLifetime applies when the configured lifetime is not positive.
const DefaultSessionLifetime = 7 * 24 * time.Hour

const refreshTimeout = 10 * time.Second

// TokenRefresher exchanges a refresh token with the identity provider.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// SessionManager owns the session lifecycle on top of a SessionStore.
type SessionManager struct {
	store     storage.SessionStore
	codec     *TokenCodec
	refresher TokenRefresher
	lifetime  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionManager wires a manager. refresher may be nil when no provider is configured.
func NewSessionManager(store storage.SessionStore, codec *TokenCodec, refresher TokenRefresher, lifetime time.Duration, logger *zap.Logger) *SessionManager {
	if lifetime <= 0 {
		lifetime = DefaultSessionLifetime
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		store:     store,
		codec:     codec,
		refresher: refresher,
		lifetime:  lifetime,
		logger:    logger,
		now:       time.Now,
	}
}

// Lifetime is the fixed validity window of new sessions.
func (m *SessionManager) Lifetime() time.Duration {
	return m.lifetime
}

// Create persists a session for userID and returns its id. tokens may be nil.
func (m *SessionManager) Create(ctx context.Context, userID int64, ip, userAgent string, tokens *oauth2.Token) (string, error) {
	id, err := newSessionID()
	if err != nil {
		return "", err
	}

	var access, refresh string
	if tokens != nil {
		if access, err = m.codec.Encrypt(tokens.AccessToken); err != nil {
			return "", err
		}
		if refresh, err = m.codec.Encrypt(tokens.RefreshToken); err != nil {
			return "", err
		}
	}

	now := m.now()
	session := models.Session{
		ID:           id,
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: refresh,
		IPAddress:    ip,
		UserAgent:    userAgent,
		CreatedAt:    now,
		ExpiresAt:    now.Add(m.lifetime),
	}
	if err := m.store.CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Validate resolves a session id to its user. It returns nil without error when the
// session is unknown, expired, or owned by a user who is no longer approved and active;
// in the last case the session row is removed.
func (m *SessionManager) Validate(ctx context.Context, sessionID string) (*models.UserContext, error) {
	if sessionID == "" {
		return nil, nil
	}
	row, err := m.store.FindSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if !row.Session.ExpiresAt.After(m.now()) {
		return nil, nil
	}

	user := row.User
	if !user.IsApproved || !user.IsActive {
		if err := m.store.DeleteSession(ctx, sessionID); err != nil {
			m.logger.Warn("drop ineligible session", zap.Int64("user_id", user.ID), zap.Error(err))
		}
		return nil, nil
	}

	return &models.UserContext{
		SessionID:  sessionID,
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		IsApproved: user.IsApproved,
		IsActive:   user.IsActive,
		EntrantID:  user.EntrantID,
		PictureURL: user.PictureURL,
	}, nil
}

// RefreshOAuthToken exchanges the stored refresh token for a new access token and stores
// it. It returns nil without error when the session or its refresh token is missing.
func (m *SessionManager) RefreshOAuthToken(ctx context.Context, sessionID string) (*oauth2.Token, error) {
	row, err := m.store.FindSession(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	refreshToken, err := m.codec.Decrypt(row.Session.RefreshToken)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, nil
	}
	if m.refresher == nil {
		return nil, apperr.New(apperr.ErrConfig, "no identity provider configured")
	}

	ctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()
	tok, err := m.refresher.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUpstream, "token refresh failed", err)
	}

	access, err := m.codec.Encrypt(tok.AccessToken)
	if err != nil {
		return nil, err
	}
	if err := m.store.UpdateSessionAccessToken(ctx, sessionID, access); err != nil {
		return nil, fmt.Errorf("store refreshed token: %w", err)
	}
	return tok, nil
}

// Delete removes a session. Unknown ids are ignored.
func (m *SessionManager) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.store.DeleteSession(ctx, sessionID)
}

// RevokeAll removes every session of a user and reports how many were removed.
func (m *SessionManager) RevokeAll(ctx context.Context, userID int64) (int64, error) {
	n, err := m.store.DeleteUserSessions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions: %w", err)
	}
	if n > 0 {
		m.logger.Info("sessions revoked", zap.Int64("user_id", userID), zap.Int64("count", n))
	}
	return n, nil
}

// PurgeExpired removes sessions past expiry.
func (m *SessionManager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.store.DeleteExpiredSessions(ctx, m.now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return n, nil
}

// ListActive returns the user's unexpired sessions without token material.
func (m *SessionManager) ListActive(ctx context.Context, userID int64) ([]models.SessionInfo, error) {
	rows, err := m.store.ListUserSessions(ctx, userID, m.now())
	if err != nil {
		return nil, err
	}
	out := make([]models.SessionInfo, 0, len(rows))
	for _, s := range rows {
		out = append(out, models.SessionInfo{
			ID:        s.ID,
			IPAddress: s.IPAddress,
			UserAgent: s.UserAgent,
			CreatedAt: s.CreatedAt,
			ExpiresAt: s.ExpiresAt,
		})
	}
	return out, nil
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
