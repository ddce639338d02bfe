// Package linkedin connects a user's LinkedIn account and proposes profile updates from it.
package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/auth"
	"github.com/hongminglow/lateral-entry-be/internal/config"
	"github.com/hongminglow/lateral-entry-be/internal/models"
	"github.com/hongminglow/lateral-entry-be/internal/storage"
)

const (
	statePurpose   = "linkedin"
	settingsPage   = "/pages/profile-settings.html"
	defaultAPIBase = "https://api.linkedin.com/v2"
	exchangeLimit  = 10 * time.Second
)

var endpoint = oauth2.Endpoint{
	AuthURL:   "https://www.linkedin.com/oauth/v2/authorization",
	TokenURL:  "https://www.linkedin.com/oauth/v2/accessToken",
	AuthStyle: oauth2.AuthStyleInParams,
}

// ErrNotConnected is returned by Sync for users without a LinkedIn link.
var ErrNotConnected = apperr.New(apperr.ErrValidation, "LinkedIn not connected")

var errBadState = apperr.New(apperr.ErrValidation, "Invalid state parameter")

// Proposer queues profile edits for moderation.
type Proposer interface {
	Propose(ctx context.Context, userID, entrantID int64, field, value string) (models.FieldEditRequest, error)
}

// Status is what the settings page shows.
type Status struct {
	Connected   bool       `json:"connected"`
	LinkedInID  string     `json:"linkedin_id,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// Service runs the LinkedIn OAuth flow and profile sync.
type Service struct {
	oauth    *oauth2.Config
	apiBase  string
	http     *http.Client
	signer   *auth.StateSigner
	codec    *auth.TokenCodec
	store    storage.LinkedInStore
	proposer Proposer
	logger   *zap.Logger
}

// NewService wires the service.
func NewService(client config.OAuthClient, signer *auth.StateSigner, codec *auth.TokenCodec,
	store storage.LinkedInStore, proposer Proposer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		oauth: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  client.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       []string{"r_liteprofile", "r_emailaddress"},
		},
		apiBase:  defaultAPIBase,
		http:     &http.Client{Timeout: exchangeLimit},
		signer:   signer,
		codec:    codec,
		store:    store,
		proposer: proposer,
		logger:   logger,
	}
}

// ConnectURL returns the LinkedIn consent URL carrying a state bound to userID.
func (s *Service) ConnectURL(userID int64) (string, error) {
	if s.oauth.ClientID == "" || s.oauth.ClientSecret == "" {
		return "", apperr.New(apperr.ErrConfig, "LinkedIn is not configured")
	}
	state, err := s.signer.Issue(statePurpose, userID)
	if err != nil {
		return "", fmt.Errorf("issue linkedin state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), nil
}

// Callback completes the flow for userID and stores the encrypted access token.
func (s *Service) Callback(ctx context.Context, userID int64, code, state string) error {
	bound, err := s.signer.Verify(state, statePurpose)
	if err != nil || bound != userID {
		return errBadState
	}
	if code == "" {
		return apperr.New(apperr.ErrValidation, "Missing authorization code")
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.http)
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return apperr.Wrap(apperr.ErrUpstream, "LinkedIn token exchange failed", err)
	}
	profile, raw, err := s.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return err
	}
	encrypted, err := s.codec.Encrypt(tok.AccessToken)
	if err != nil {
		return err
	}
	if err := s.store.UpsertLinkedInConnection(ctx, models.LinkedInConnection{
		UserID:      userID,
		LinkedInID:  profile.ID,
		AccessToken: encrypted,
		ProfileData: string(raw),
	}); err != nil {
		return fmt.Errorf("store linkedin connection: %w", err)
	}
	s.logger.Info("linkedin connected", zap.Int64("user_id", userID))
	return nil
}

// CallbackRedirect is where the browser goes after the callback.
func CallbackRedirect(providerError string, err error) string {
	switch {
	case providerError != "":
		return settingsPage + "?error=" + url.QueryEscape("linkedin_"+providerError)
	case errors.Is(err, errBadState):
		return settingsPage + "?error=linkedin_csrf"
	case err != nil:
		return settingsPage + "?error=linkedin_failed"
	default:
		return settingsPage + "?success=linkedin_connected"
	}
}

// Disconnect removes the link.
func (s *Service) Disconnect(ctx context.Context, userID int64) error {
	return s.store.DeleteLinkedInConnection(ctx, userID)
}

// Status reports whether userID is connected.
func (s *Service) Status(ctx context.Context, userID int64) (Status, error) {
	conn, err := s.store.GetLinkedInConnection(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return Status{}, nil
	}
	if err != nil {
		return Status{}, err
	}
	at := conn.ConnectedAt
	return Status{Connected: true, LinkedInID: conn.LinkedInID, ConnectedAt: &at}, nil
}

// Sync fetches the member profile and proposes name and position edits. Every attempt
// after the connection lookup lands in the sync history.
func (s *Service) Sync(ctx context.Context, user *models.UserContext) (int, error) {
	conn, err := s.store.GetLinkedInConnection(ctx, user.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return 0, ErrNotConnected
	}
	if err != nil {
		return 0, err
	}

	n, err := s.sync(ctx, user, conn)
	record := models.LinkedInSync{UserID: user.UserID, SyncType: "manual", FieldsSynced: n, Status: "success"}
	if err != nil {
		msg := apperr.Reason(err)
		record.Status, record.ErrorMessage, record.FieldsSynced = "failed", &msg, 0
	}
	if herr := s.store.RecordLinkedInSync(ctx, record); herr != nil {
		s.logger.Warn("record linkedin sync", zap.Int64("user_id", user.UserID), zap.Error(herr))
	}
	return n, err
}

func (s *Service) sync(ctx context.Context, user *models.UserContext, conn models.LinkedInConnection) (int, error) {
	if user.EntrantID == nil {
		return 0, apperr.New(apperr.ErrValidation, "No profile linked to your account")
	}
	token, err := s.codec.Decrypt(conn.AccessToken)
	if err != nil {
		return 0, err
	}
	profile, _, err := s.fetchProfile(ctx, token)
	if err != nil {
		return 0, err
	}

	updates := []struct {
		field models.ProfileField
		value string
	}{
		{models.FieldName, profile.FullName()},
		{models.FieldPosition, profile.Headline()},
	}
	synced := 0
	for _, u := range updates {
		if u.value == "" {
			continue
		}
		if _, err := s.proposer.Propose(ctx, user.UserID, *user.EntrantID, string(u.field), u.value); err != nil {
			return synced, err
		}
		synced++
	}
	return synced, nil
}

type localized struct {
	Localized map[string]string `json:"localized"`
}

func (l *localized) value() string {
	if l == nil {
		return ""
	}
	if v := l.Localized["en_US"]; v != "" {
		return v
	}
	for _, v := range l.Localized {
		return v
	}
	return ""
}

// Member is the subset of /v2/me the service reads.
type Member struct {
	ID                 string     `json:"id"`
	FirstName          *localized `json:"firstName"`
	LastName           *localized `json:"lastName"`
	LocalizedFirstName string     `json:"localizedFirstName"`
	LocalizedLastName  string     `json:"localizedLastName"`
	LocalizedHeadline  string     `json:"localizedHeadline"`
}

// FullName joins the first and last name.
func (m Member) FullName() string {
	first := m.FirstName.value()
	if first == "" {
		first = m.LocalizedFirstName
	}
	last := m.LastName.value()
	if last == "" {
		last = m.LocalizedLastName
	}
	return strings.TrimSpace(first + " " + last)
}

// Headline is the member's current title, when shared.
func (m Member) Headline() string {
	return strings.TrimSpace(m.LocalizedHeadline)
}

func (s *Service) fetchProfile(ctx context.Context, accessToken string) (Member, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiBase+"/me", nil)
	if err != nil {
		return Member{}, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	resp, err := s.http.Do(req)
	if err != nil {
		return Member{}, nil, apperr.Wrap(apperr.ErrUpstream, "LinkedIn profile request failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Member{}, nil, apperr.Newf(apperr.ErrUpstream, "Failed to fetch LinkedIn profile (status %d)", resp.StatusCode)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Member{}, nil, apperr.Wrap(apperr.ErrUpstream, "LinkedIn returned an unreadable profile", err)
	}
	var m Member
	if err := json.Unmarshal(raw, &m); err != nil {
		return Member{}, nil, apperr.Wrap(apperr.ErrUpstream, "LinkedIn returned an unreadable profile", err)
	}
	return m, raw, nil
}
