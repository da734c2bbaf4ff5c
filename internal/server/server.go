package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler is an [http.Handler] that knows which paths it serves.
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the path patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

const shutdownTimeout = 5 * time.Second

// CallbackServer is a short-lived HTTP server that waits for a single OAuth callback.
type CallbackServer struct {
	addr     string
	listener net.Listener
	handler  *OAuthHandler
	router   *BasicRouter
	logger   *log.Logger
}

// NewCallbackServer builds a server listening on host:port that routes to handler.
func NewCallbackServer(host string, port int, handler *OAuthHandler, logger *log.Logger) *CallbackServer {
	if host == "" {
		host = "127.0.0.1"
	}
	if logger == nil {
		logger = log.Default()
	}

	router := NewBasicRouter()
	router.Use(Logging(logger), Recover(logger))
	router.Handler(handler)

	return &CallbackServer{
		addr:    net.JoinHostPort(host, strconv.Itoa(port)),
		handler: handler,
		router:  router,
		logger:  logger,
	}
}

// Addr returns the listening address once [CallbackServer.Listen] succeeded, else the configured one.
func (s *CallbackServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Listen binds the address so the authorization URL can be opened before [CallbackServer.Wait] is called.
func (s *CallbackServer) Listen() error {
	if s.listener != nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener
	return nil
}

// Wait serves until the handler reports a result or ctx is done, then shuts the server down.
func (s *CallbackServer) Wait(ctx context.Context) (*OAuthResult, error) {
	if err := s.Listen(); err != nil {
		return nil, err
	}
	return s.serve(ctx, s.listener)
}

func (s *CallbackServer) serve(ctx context.Context, listener net.Listener) (*OAuthResult, error) {
	srv := &http.Server{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)

	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	s.logger.Debug("waiting for callback", "addr", listener.Addr().String())

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warnf("callback server shutdown: %v", err)
		}
	}()

	select {
	case result := <-s.handler.Result():
		return &result, result.Error()
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
