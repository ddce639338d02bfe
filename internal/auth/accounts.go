package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Accounts implements admin user management.
type Accounts struct {
	users    storage.UserStore
	audit    storage.AuditStore
	sessions *SessionManager
	logger   *zap.Logger
}

// NewAccounts wires the service.
func NewAccounts(users storage.UserStore, audit storage.AuditStore, sessions *SessionManager, logger *zap.Logger) *Accounts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Accounts{users: users, audit: audit, sessions: sessions, logger: logger}
}

// ListUsers pages through users.
func (a *Accounts) ListUsers(ctx context.Context, q models.UserQuery) ([]models.UserListItem, int64, error) {
	return a.users.ListUsers(ctx, q)
}

// UpdateUser applies patch. Sessions are revoked when the role changes or the account is
// deactivated, so the new policy applies on the next request.
func (a *Accounts) UpdateUser(ctx context.Context, actor models.Actor, userID int64, patch models.UserPatch) (models.User, error) {
	if patch.Empty() {
		return models.User{}, apperr.New(apperr.ErrValidation, "No valid fields to update")
	}
	if patch.Role != nil {
		if _, err := models.ParseRole(string(*patch.Role)); err != nil {
			return models.User{}, apperr.Wrap(apperr.ErrValidation, "Invalid role", err)
		}
	}

	before, err := a.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, apperr.New(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return models.User{}, err
	}

	after, err := a.users.UpdateUser(ctx, userID, patch)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, apperr.New(apperr.ErrNotFound, "User or linked profile not found")
	}
	if err != nil {
		return models.User{}, fmt.Errorf("update user: %w", err)
	}

	if after.Role != before.Role || (before.IsActive && !after.IsActive) {
		if _, err := a.sessions.RevokeAll(ctx, userID); err != nil {
			return models.User{}, err
		}
	}

	old, updated := jsonText(userAttributes(before)), jsonText(userAttributes(after))
	err = a.audit.AppendAudit(ctx, models.AuditEntry{
		UserID:     &actor.UserID,
		Action:     models.ActionUpdateUser,
		EntityType: models.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		OldValue:   &old,
		NewValue:   &updated,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
	if err != nil {
		return models.User{}, err
	}
	return after, nil
}

// DeleteUser revokes every session of the user, then removes the account.
func (a *Accounts) DeleteUser(ctx context.Context, actor models.Actor, userID int64) error {
	if actor.UserID == userID {
		return apperr.New(apperr.ErrValidation, "You cannot delete your own account")
	}
	user, err := a.users.GetUser(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, "User not found")
	}
	if err != nil {
		return err
	}

	if _, err := a.sessions.RevokeAll(ctx, userID); err != nil {
		return err
	}
	if err := a.users.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	old := jsonText(user)
	return a.audit.AppendAudit(ctx, models.AuditEntry{
		UserID:     &actor.UserID,
		Action:     models.ActionDeleteUser,
		EntityType: models.EntityUser,
		EntityID:   strconv.FormatInt(userID, 10),
		OldValue:   &old,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
}

func userAttributes(u models.User) map[string]any {
	return map[string]any{
		"role":       u.Role,
		"is_active":  u.IsActive,
		"entrant_id": u.EntrantID,
	}
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
