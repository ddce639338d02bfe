package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

// Identity is the verified subject handed over by the OAuth provider.
type Identity struct {
	Subject       string
	Email         string
	Name          string
	Picture       string
	EmailVerified bool
}

// LoginAttempt is one completed OAuth callback.
type LoginAttempt struct {
	Identity  Identity
	Tokens    *oauth2.Token
	IPAddress string
	UserAgent string
}

// LoginOutcome names what a login attempt led to.
type LoginOutcome string

const (
	OutcomeSessionCreated  LoginOutcome = "session_created"
	OutcomePendingApproval LoginOutcome = "pending_approval"
	OutcomeAlreadyPending  LoginOutcome = "already_pending"
	OutcomeAccessRequested LoginOutcome = "access_requested"
)

// LoginResult carries the outcome and, for OutcomeSessionCreated, the new session.
type LoginResult struct {
	Outcome   LoginOutcome
	SessionID string
	User      models.User
}

// AccountStatus answers the pending-approval page.
type AccountStatus struct {
	Status string `json:"status"`
	Active bool   `json:"active"`
}

// Resolver maps OAuth identities onto users and pending access requests.
type Resolver struct {
	users    storage.UserStore
	pending  storage.PendingUserStore
	audit    storage.AuditStore
	sessions *SessionManager
	logger   *zap.Logger
	now      func() time.Time
}

// NewResolver wires a resolver.
func NewResolver(users storage.UserStore, pending storage.PendingUserStore, audit storage.AuditStore, sessions *SessionManager, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		users:    users,
		pending:  pending,
		audit:    audit,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve decides what a verified login turns into. Known but unapproved users get
// OutcomePendingApproval and deactivated users ErrAccountDeactivated; neither receives a
// session. Unknown identities become exactly one pending request.
func (r *Resolver) Resolve(ctx context.Context, attempt LoginAttempt) (LoginResult, error) {
	id := attempt.Identity
	if id.Subject == "" || id.Email == "" {
		return LoginResult{}, apperr.New(apperr.ErrValidation, "identity is missing subject or email")
	}
	if !id.EmailVerified {
		return LoginResult{}, apperr.New(apperr.ErrForbidden, "Google email address is not verified")
	}

	user, err := r.users.FindUserByGoogleID(ctx, id.Subject)
	switch {
	case err == nil:
		return r.login(ctx, user, attempt)
	case !errors.Is(err, storage.ErrNotFound):
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}

	if _, err := r.pending.FindPendingByGoogleID(ctx, id.Subject); err == nil {
		return LoginResult{Outcome: OutcomeAlreadyPending}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return LoginResult{}, fmt.Errorf("find pending user: %w", err)
	}

	_, err = r.pending.CreatePendingUser(ctx, models.PendingUser{
		GoogleID:   id.Subject,
		Email:      id.Email,
		Name:       displayName(id),
		PictureURL: id.Picture,
		IPAddress:  attempt.IPAddress,
		UserAgent:  attempt.UserAgent,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// lost a race with a concurrent callback for the same identity
		return LoginResult{Outcome: OutcomeAlreadyPending}, nil
	}
	if err != nil {
		return LoginResult{}, fmt.Errorf("create pending user: %w", err)
	}
	r.logger.Info("access requested", zap.String("email", id.Email))
	return LoginResult{Outcome: OutcomeAccessRequested}, nil
}

func (r *Resolver) login(ctx context.Context, user models.User, attempt LoginAttempt) (LoginResult, error) {
	if !user.IsApproved {
		return LoginResult{Outcome: OutcomePendingApproval, User: user}, nil
	}
	if !user.IsActive {
		return LoginResult{}, apperr.New(apperr.ErrAccountDeactivated, "Your account has been deactivated")
	}

	sessionID, err := r.sessions.Create(ctx, user.ID, attempt.IPAddress, attempt.UserAgent, attempt.Tokens)
	if err != nil {
		return LoginResult{}, err
	}
	now := r.now()
	if err := r.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return LoginResult{}, fmt.Errorf("update last login: %w", err)
	}
	user.LastLogin = &now

	err = r.audit.AppendAudit(ctx, models.AuditEntry{
		UserID:     &user.ID,
		Action:     models.ActionLogin,
		EntityType: models.EntityUser,
		EntityID:   strconv.FormatInt(user.ID, 10),
		IPAddress:  attempt.IPAddress,
		UserAgent:  attempt.UserAgent,
	})
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Outcome: OutcomeSessionCreated, SessionID: sessionID, User: user}, nil
}

// Logout ends a session and records it when the session belonged to someone.
func (r *Resolver) Logout(ctx context.Context, sessionID string, actor models.Actor) error {
	if err := r.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	if actor.UserID == 0 {
		return nil
	}
	return r.audit.AppendAudit(ctx, models.AuditEntry{
		UserID:     &actor.UserID,
		Action:     models.ActionLogout,
		EntityType: models.EntityUser,
		EntityID:   strconv.FormatInt(actor.UserID, 10),
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
}

// ListPending returns open access requests.
func (r *Resolver) ListPending(ctx context.Context) ([]models.PendingUser, error) {
	return r.pending.ListPendingUsers(ctx)
}

// ApprovePending turns an access request into an approved appointee, optionally linked
// to a profile.
func (r *Resolver) ApprovePending(ctx context.Context, actor models.Actor, pendingID int64, entrantID *int64) (models.User, error) {
	p, err := r.pending.GetPendingUser(ctx, pendingID)
	if errors.Is(err, storage.ErrNotFound) {
		return models.User{}, apperr.New(apperr.ErrNotFound, "Pending user not found")
	}
	if err != nil {
		return models.User{}, err
	}

	old, updated := "pending", "approved"
	user, err := r.pending.ApprovePendingUser(ctx, pendingID, models.User{
		GoogleID:   p.GoogleID,
		Email:      p.Email,
		Name:       p.Name,
		Role:       models.RoleAppointee,
		IsApproved: true,
		IsActive:   true,
		EntrantID:  entrantID,
		PictureURL: p.PictureURL,
	}, models.AuditEntry{
		UserID:     &actor.UserID,
		Action:     models.ActionApproveUser,
		EntityType: models.EntityUser,
		OldValue:   &old,
		NewValue:   &updated,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return models.User{}, apperr.New(apperr.ErrNotFound, "Pending user not found")
	case errors.Is(err, storage.ErrAlreadyExists):
		return models.User{}, apperr.New(apperr.ErrConflict, "A user with this Google account or email already exists")
	case err != nil:
		return models.User{}, fmt.Errorf("approve pending user: %w", err)
	}
	r.logger.Info("user approved", zap.Int64("user_id", user.ID), zap.Int64("by", actor.UserID))
	return user, nil
}

// RejectPending discards an access request.
func (r *Resolver) RejectPending(ctx context.Context, actor models.Actor, pendingID int64, reason string) error {
	if reason == "" {
		reason = "No reason provided"
	}
	value := "rejected: " + reason
	err := r.pending.RejectPendingUser(ctx, pendingID, models.AuditEntry{
		UserID:     &actor.UserID,
		Action:     models.ActionRejectUser,
		EntityType: models.EntityPendingUser,
		EntityID:   strconv.FormatInt(pendingID, 10),
		NewValue:   &value,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
	})
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.New(apperr.ErrNotFound, "Pending user not found")
	}
	return err
}

// Status reports whether an OAuth subject is approved, pending or unknown.
func (r *Resolver) Status(ctx context.Context, googleID string) (AccountStatus, error) {
	if googleID == "" {
		return AccountStatus{}, apperr.New(apperr.ErrValidation, "google_id is required")
	}
	user, err := r.users.FindUserByGoogleID(ctx, googleID)
	if err == nil {
		if user.IsApproved {
			return AccountStatus{Status: "approved", Active: user.IsActive}, nil
		}
		return AccountStatus{Status: "pending", Active: user.IsActive}, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return AccountStatus{}, err
	}
	if _, err := r.pending.FindPendingByGoogleID(ctx, googleID); err == nil {
		return AccountStatus{Status: "pending"}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return AccountStatus{}, err
	}
	return AccountStatus{Status: "not_found"}, nil
}

func displayName(id Identity) string {
	if id.Name != "" {
		return id.Name
	}
	return id.Email
}
