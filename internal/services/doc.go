// Package services defines the [Library] interface over a user's streaming library and implements it for Spotify.
//
// # Library Interface
//
// [Library] exposes single-page reads and bounded writes. Callers drain paginated reads with [Collect] and split
// large writes with [Dispatch] or [DispatchEach], which never send more than [MaxBatchSize] items per call.
//
// # Spotify Implementation
//
// [SpotifyLibrary] is built on github.com/zmb3/spotify/v2. Page cursors are decimal offsets.
// Only playlists owned by the current user are returned by [SpotifyLibrary.OwnedPlaylistsPage].
//
// [SpotifyAuth] holds the OAuth2 configuration. [SpotifyAuth.HTTPClient] returns a client that refreshes
// its token automatically, reports new tokens through the refresh callback and is throttled by [RateLimitedTransport].
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrUpstream] : any failed API call
//   - [shared.ErrTokenExpired] : token refresh failed or the API answered 401, reauthorization needed
//   - [shared.ErrNotAuthenticated] : no stored token
//   - [shared.ErrBatchTooLarge] : more than [MaxBatchSize] items passed to a single write
package services
