package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/hazelrye/deepcuts/internal/models"
	"github.com/hazelrye/deepcuts/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// Fallback lifetime when the token endpoint omits expires_in.
	defaultTokenTTL = time.Hour
)

// delegatedScopes are requested during the authorization-code flow.
// Playlist creation defaults to private, so the private modify scope is
// the load-bearing one.
var delegatedScopes = []string{
	"playlist-modify-private",
	"playlist-modify-public",
}

// TokenManager acquires credentials for both OAuth grant types against the
// Spotify accounts service.
type TokenManager struct {
	config     *oauth2.Config
	service    *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewTokenManager creates a TokenManager from the statically configured
// application identity. Fails when client id or secret are missing.
func NewTokenManager(cfg shared.SpotifyConfig) (*TokenManager, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       delegatedScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	service := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &TokenManager{
		config:  config,
		service: service,
		now:     time.Now,
	}, nil
}

// SetHTTPClient overrides the HTTP client used for token exchanges.
func (m *TokenManager) SetHTTPClient(client *http.Client) {
	m.httpClient = client
}

// SetEndpoints overrides the accounts-service endpoints. Tests point these
// at an httptest server.
func (m *TokenManager) SetEndpoints(authURL, tokenURL string) {
	m.config.Endpoint = oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL}
	m.service.TokenURL = tokenURL
}

// context returns ctx with the manager's HTTP client installed for the
// oauth2 package, when one is set.
func (m *TokenManager) context(ctx context.Context) context.Context {
	if m.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}
	return ctx
}

// Service performs a client-credentials exchange and returns a service
// credential. The exchange is not retried; callers may retry later.
func (m *TokenManager) Service(ctx context.Context) (models.Credential, error) {
	token, err := m.service.Token(m.context(ctx))
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("%w: token endpoint returned no access token", shared.ErrAuthFailed)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = m.now().Add(defaultTokenTTL)
	}

	return models.Credential{
		Kind:        models.ServiceCredential,
		AccessToken: token.AccessToken,
		ExpiresAt:   expiry,
	}, nil
}

// AuthURL constructs the authorization URL to redirect the end-user to.
// Pure URL construction; no side effects.
func (m *TokenManager) AuthURL(state string) string {
	return m.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("show_dialog", "true"),
	)
}

// Exchange trades a one-time authorization code for a delegated credential
// with a refresh token.
func (m *TokenManager) Exchange(ctx context.Context, code string) (models.Credential, error) {
	token, err := m.config.Exchange(m.context(ctx), code)
	if err != nil {
		return models.Credential{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return models.Credential{}, fmt.Errorf("%w: code exchange returned no access token", shared.ErrAuthFailed)
	}

	expiry := token.Expiry
	if expiry.IsZero() {
		expiry = m.now().Add(defaultTokenTTL)
	}

	return models.Credential{
		Kind:         models.DelegatedCredential,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    expiry,
	}, nil
}
