// Package server runs the local HTTP endpoint that completes the Spotify OAuth flow.
//
// # Router
//
// [BasicRouter] wraps [http.ServeMux] with method filtering and a [Middleware] stack.
// Middleware is applied in reverse order, so the first one added is the outermost.
// [Logging] and [Recover] are the stock middleware.
//
// # OAuth Callback
//
// [OAuthHandler] validates the state parameter, exchanges the authorization code through a [TokenExchanger]
// and publishes a single [OAuthResult]. Only the first callback is processed.
//
// [CallbackServer] listens on the configured host and port, waits for that result or context cancellation
// and shuts itself down.
package server
