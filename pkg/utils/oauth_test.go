package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/cornerstone-fellowship/members/internal/config"
)

func testOAuthClient() *config.OAuthClientConfig {
	return &config.OAuthClientConfig{
		Installed: config.OAuthInstalled{
			ClientID:     "client-id.apps.googleusercontent.com",
			ProjectID:    "members-test",
			AuthURI:      "https://accounts.google.com/o/oauth2/auth",
			TokenURI:     "https://oauth2.googleapis.com/token",
			ClientSecret: "secret",
			RedirectURIs: []string{"http://localhost"},
		},
	}
}

func TestGetOAuthConfig_RequestsOnlyGmailSend(t *testing.T) {
	cfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	assert.Equal(t, []string{ScopeGmailSend}, cfg.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth/callback", cfg.RedirectURL)
}

func TestTokenFile_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	token, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, token)

	saved := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", Expiry: time.Now().Add(time.Hour).Round(time.Second)}
	require.NoError(t, SaveTokenToFile("test", saved))

	loaded, err := LoadTokenFromFile("test")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "access", loaded.AccessToken)
	assert.Equal(t, "refresh", loaded.RefreshToken)

	require.NoError(t, DeleteTokenFile("test"))
	loaded, err = LoadTokenFromFile("test")
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestTokenSource_RequiresSavedToken(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := GetOAuthConfig(testOAuthClient())
	require.NoError(t, err)

	_, err = TokenSource(context.Background(), cfg, "prod", zap.NewNop())
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestPersistingTokenSource_SavesNewTokens(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	fresh := &oauth2.Token{AccessToken: "refreshed", Expiry: time.Now().Add(time.Hour)}
	src := &persistingTokenSource{
		base:   oauth2.StaticTokenSource(fresh),
		env:    "dev",
		last:   "stale",
		logger: zap.NewNop(),
	}

	got, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "refreshed", got.AccessToken)

	saved, err := LoadTokenFromFile("dev")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "refreshed", saved.AccessToken)
}
