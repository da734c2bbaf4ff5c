package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/stylefy/internal/shared"
	"golang.org/x/oauth2"
)

type mockTokenSource struct {
	token *oauth2.Token
	err   error
	calls int
}

func (m *mockTokenSource) Token() (*oauth2.Token, error) {
	m.calls++
	return m.token, m.err
}

func TestSpotifyAuth(t *testing.T) {
	credentials := map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	}

	t.Run("NewSpotifyAuth", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			auth, err := NewSpotifyAuth(map[string]string{
				"client_id":     "test_client_id",
				"client_secret": "test_client_secret",
				"redirect_uri":  "http://127.0.0.1:4000/callback",
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if auth.GetOAuthConfig().RedirectURL != "http://127.0.0.1:4000/callback" {
				t.Errorf("expected configured redirect URI, got %s", auth.GetOAuthConfig().RedirectURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyAuth(map[string]string{"client_secret": "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyAuth(map[string]string{"client_id": "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Default Redirect URI", func(t *testing.T) {
			auth, err := NewSpotifyAuth(credentials)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if auth.GetOAuthConfig().RedirectURL != defaultRedirectURI {
				t.Errorf("expected default redirect URI, got %s", auth.GetOAuthConfig().RedirectURL)
			}
		})
	})

	t.Run("Get AuthURL", func(t *testing.T) {
		auth, err := NewSpotifyAuth(credentials)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		authURL := auth.GetAuthURL("test_state")
		for _, want := range []string{"accounts.spotify.com", "test_client_id", "test_state", "playlist-modify-public"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}
	})

	t.Run("HTTPClient", func(t *testing.T) {
		auth, err := NewSpotifyAuth(credentials)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		t.Run("requires a token", func(t *testing.T) {
			_, err := auth.HTTPClient(context.Background(), nil, 0)
			if !errors.Is(err, shared.ErrNotAuthenticated) {
				t.Errorf("expected ErrNotAuthenticated, got %v", err)
			}
		})

		t.Run("sends bearer token", func(t *testing.T) {
			var header string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				header = r.Header.Get("Authorization")
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			token := &oauth2.Token{AccessToken: "access", Expiry: time.Now().Add(time.Hour)}
			client, err := auth.HTTPClient(context.Background(), token, 0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			resp, err := client.Get(srv.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()

			if header != "Bearer access" {
				t.Errorf("expected bearer header, got %q", header)
			}
		})
	})

	t.Run("SetTokenRefreshCallback", func(t *testing.T) {
		auth, err := NewSpotifyAuth(credentials)
		if err != nil {
			t.Fatalf("failed to create auth: %v", err)
		}

		auth.SetTokenRefreshCallback(func(*oauth2.Token) {})
		if auth.onRefresh == nil {
			t.Error("expected callback to be set")
		}

		auth.SetTokenRefreshCallback(nil)
		if auth.onRefresh != nil {
			t.Error("expected callback to be nil")
		}
	})
}

func TestRefreshableTokenSource(t *testing.T) {
	t.Run("skips callback while the token is unchanged", func(t *testing.T) {
		called := 0
		source := &refreshableTokenSource{
			source:   &mockTokenSource{token: &oauth2.Token{AccessToken: "same"}},
			callback: func(*oauth2.Token) { called++ },
			last:     "same",
		}

		for range 3 {
			if _, err := source.Token(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		}

		if called != 0 {
			t.Errorf("expected no callbacks, got %d", called)
		}
	})

	t.Run("calls callback when the token changes", func(t *testing.T) {
		var captured *oauth2.Token
		mock := &mockTokenSource{token: &oauth2.Token{AccessToken: "new", RefreshToken: "refresh"}}
		source := &refreshableTokenSource{
			source:   mock,
			callback: func(token *oauth2.Token) { captured = token },
			last:     "old",
		}

		token, err := source.Token()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if captured == nil || captured.AccessToken != "new" {
			t.Errorf("expected callback with new token, got %+v", captured)
		}
		if token.AccessToken != "new" {
			t.Errorf("expected new token returned, got %s", token.AccessToken)
		}
	})

	t.Run("handles nil callback", func(t *testing.T) {
		source := &refreshableTokenSource{source: &mockTokenSource{token: &oauth2.Token{AccessToken: "t"}}}
		if _, err := source.Token(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("wraps refresh failures", func(t *testing.T) {
		source := &refreshableTokenSource{source: &mockTokenSource{err: errors.New("invalid_grant")}}
		_, err := source.Token()
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestRateLimitedTransport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	t.Run("unlimited when rate is zero", func(t *testing.T) {
		client := &http.Client{Transport: NewRateLimitedTransport(nil, 0)}
		for range 5 {
			resp, err := client.Get(srv.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
		}
	})

	t.Run("spaces requests", func(t *testing.T) {
		client := &http.Client{Transport: NewRateLimitedTransport(nil, 20)}
		start := time.Now()
		for range 3 {
			resp, err := client.Get(srv.URL)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			resp.Body.Close()
		}

		if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
			t.Errorf("expected at least 90ms for 3 requests at 20/s, got %v", elapsed)
		}
	})

	t.Run("honors cancelled context", func(t *testing.T) {
		transport := NewRateLimitedTransport(nil, 0.001)
		transport.limiter.Allow()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		if _, err := transport.RoundTrip(req); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
