package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/config"
)

const (
	googleIssuer  = "https://accounts.google.com"
	googleJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

	// googleTimeout bounds one code exchange including ID token verification.
	googleTimeout = 10 * time.Second
)

var googleEndpoint = oauth2.Endpoint{
	AuthURL:   "https://accounts.google.com/o/oauth2/v2/auth",
	TokenURL:  "https://oauth2.googleapis.com/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

// GoogleProvider runs the Google authorization code flow and verifies ID tokens.
type GoogleProvider struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	http       *http.Client
	timeout    time.Duration
	configured bool
}

// NewGoogleProvider builds a provider. Signing keys are fetched lazily on first
// verification using ctx.
func NewGoogleProvider(ctx context.Context, client config.OAuthClient) *GoogleProvider {
	httpClient := &http.Client{Timeout: googleTimeout}
	keys := oidc.NewRemoteKeySet(oidc.ClientContext(ctx, httpClient), googleJWKSURL)
	return &GoogleProvider{
		http:       httpClient,
		timeout:    googleTimeout,
		configured: client.Configured(),
		oauth: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			RedirectURL:  client.RedirectURL,
			Endpoint:     googleEndpoint,
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: oidc.NewVerifier(googleIssuer, keys, &oidc.Config{ClientID: client.ClientID}),
	}
}

// Configured reports whether Google client credentials were supplied.
func (g *GoogleProvider) Configured() bool {
	return g != nil && g.configured
}

func (g *GoogleProvider) clientContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	return context.WithValue(ctx, oauth2.HTTPClient, g.http), cancel
}

// AuthCodeURL returns the consent page URL. Offline access yields a refresh token.
func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Exchange trades an authorization code for tokens and the verified identity.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (Identity, *oauth2.Token, error) {
	if !g.Configured() {
		return Identity{}, nil, apperr.New(apperr.ErrConfig, "Google sign-in is not configured")
	}
	ctx, cancel := g.clientContext(ctx)
	defer cancel()
	tok, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("exchange code: %w", err)
	}
	raw, ok := tok.Extra("id_token").(string)
	if !ok || raw == "" {
		return Identity{}, nil, errors.New("token response has no id_token")
	}
	idToken, err := g.verifier.Verify(ctx, raw)
	if err != nil {
		return Identity{}, nil, fmt.Errorf("verify id_token: %w", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, nil, fmt.Errorf("decode id_token claims: %w", err)
	}
	return Identity{
		Subject:       idToken.Subject,
		Email:         claims.Email,
		Name:          claims.Name,
		Picture:       claims.Picture,
		EmailVerified: claims.EmailVerified,
	}, tok, nil
}

// Refresh implements TokenRefresher.
func (g *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if !g.Configured() {
		return nil, apperr.New(apperr.ErrConfig, "Google sign-in is not configured")
	}
	ctx, cancel := g.clientContext(ctx)
	defer cancel()
	return g.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
}
