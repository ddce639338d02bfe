package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hongminglow/lateral-entry-be/internal/apperr"
	"github.com/hongminglow/lateral-entry-be/internal/config"
)

func stalledProvider(t *testing.T, timeout time.Duration) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	return &GoogleProvider{
		oauth: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token", AuthStyle: oauth2.AuthStyleInParams},
		},
		http:       srv.Client(),
		timeout:    timeout,
		configured: true,
	}
}

func TestExchangeGivesUpOnSlowTokenEndpoint(t *testing.T) {
	g := stalledProvider(t, 50*time.Millisecond)

	start := time.Now()
	_, _, err := g.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRefreshGivesUpOnSlowTokenEndpoint(t *testing.T) {
	g := stalledProvider(t, 50*time.Millisecond)

	start := time.Now()
	_, err := g.Refresh(context.Background(), "refresh")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestUnconfiguredGoogleProvider(t *testing.T) {
	g := NewGoogleProvider(context.Background(), config.OAuthClient{RedirectURL: "http://localhost/cb"})
	assert.False(t, g.Configured())

	_, _, err := g.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, apperr.ErrConfig)
	_, err = g.Refresh(context.Background(), "refresh")
	assert.ErrorIs(t, err, apperr.ErrConfig)

	assert.True(t, NewGoogleProvider(context.Background(), config.OAuthClient{ClientID: "id", ClientSecret: "s"}).Configured())
}
