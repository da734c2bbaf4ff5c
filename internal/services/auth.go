package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/stylefy/internal/shared"
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"
)

const defaultRedirectURI = "http://127.0.0.1:3000/callback"

// Scopes needed to read the library and write generated playlists.
var Scopes = []string{
	"user-library-read",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
}

// TokenRefreshCallback is invoked with the new token whenever the access token changes.
type TokenRefreshCallback func(*oauth2.Token)

// SpotifyAuth holds the OAuth2 client configuration for the Spotify accounts service.
type SpotifyAuth struct {
	config    *oauth2.Config
	onRefresh TokenRefreshCallback
}

// NewSpotifyAuth builds the OAuth2 configuration from a credentials map with client_id, client_secret
// and an optional redirect_uri.
func NewSpotifyAuth(credentials map[string]string) (*SpotifyAuth, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	return &SpotifyAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       Scopes,
			Endpoint:     spotifyauth.Endpoint,
		},
	}, nil
}

// GetAuthURL returns the authorization URL the user visits to grant access.
func (a *SpotifyAuth) GetAuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the underlying configuration for the callback handler's code exchange.
func (a *SpotifyAuth) GetOAuthConfig() *oauth2.Config {
	return a.config
}

// SetTokenRefreshCallback registers fn to receive refreshed tokens so they can be persisted.
func (a *SpotifyAuth) SetTokenRefreshCallback(fn TokenRefreshCallback) {
	a.onRefresh = fn
}

// HTTPClient returns a client that authorizes requests with token, refreshing it as needed,
// and limits outgoing requests to rps per second.
func (a *SpotifyAuth) HTTPClient(ctx context.Context, token *oauth2.Token, rps float64) (*http.Client, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: run the auth command first", shared.ErrNotAuthenticated)
	}

	base := NewRateLimitedTransport(http.DefaultTransport, rps)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})

	source := &refreshableTokenSource{
		source:   a.config.TokenSource(ctx, token),
		callback: a.onRefresh,
		last:     token.AccessToken,
	}

	return &http.Client{Transport: &oauth2.Transport{Source: source, Base: base}}, nil
}

// refreshableTokenSource reports tokens whose access token differs from the last one seen.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback TokenRefreshCallback

	mu   sync.Mutex
	last string
}

func (s *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
	}

	s.mu.Lock()
	changed := token.AccessToken != s.last
	s.last = token.AccessToken
	s.mu.Unlock()

	if changed && s.callback != nil {
		s.callback(token)
	}
	return token, nil
}
