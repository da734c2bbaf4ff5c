package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/stylefy/internal/server"
	"github.com/desertthunder/stylefy/internal/services"
	"github.com/desertthunder/stylefy/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Auth performs the OAuth2 authorization code flow for Spotify.
//
// Starts a local callback server, opens the browser for user authorization and saves the issued tokens to the config file.
func (r *Runner) Auth(ctx context.Context, cmd *cli.Command) error {
	auth, err := services.NewSpotifyAuth(r.config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("%w: set them in %s or SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET", err, r.configPath)
	}

	token, err := r.doOAuth(ctx, auth, cmd.Duration("timeout"), !cmd.Bool("no-browser"))
	if err != nil {
		return err
	}

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.configPath)
	r.writePlain("You can now use: stylefy genres\n")
	return nil
}

// doOAuth runs the local callback server and waits for the authorization code exchange.
func (r *Runner) doOAuth(ctx context.Context, auth *services.SpotifyAuth, timeout time.Duration, openBrowser bool) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	handler := server.NewOAuthHandler(auth.GetOAuthConfig(), state)
	srv := server.NewCallbackServer(r.config.Server.Host, r.config.Server.Port, handler, r.logger)
	if err := srv.Listen(); err != nil {
		return nil, err
	}
	r.logger.Infof("started OAuth callback server at %v", srv.Addr())

	authURL := auth.GetAuthURL(state)
	if openBrowser {
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		if err := shared.OpenBrowser(authURL); err != nil {
			r.logger.Warnf("failed to open browser automatically %v", err)
			openBrowser = false
		}
	}
	if !openBrowser {
		r.writePlain("Open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := srv.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, timeout)
		}
		return nil, fmt.Errorf("authorization failed: %w", err)
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}
	return result.Token, nil
}
