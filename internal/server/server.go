// Package server exposes every domain operation as a named JSON-RPC 2.0
// method, the tool surface a calling agent invokes. Failures are always
// structured results or RPC errors; the process never terminates on an
// operation failure.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/shopctl/shopctl/internal/logger"
	"github.com/shopctl/shopctl/internal/session"
)

// Custom JSON-RPC error codes for shop operations.
const (
	codeProfileNotFound      = jrpc2.Code(-32001)
	codeNotAuthenticated     = jrpc2.Code(-32002)
	codeConfirmationRequired = jrpc2.Code(-32003)
	codeContentNotFound      = jrpc2.Code(-32004)
	codeInvalidParams        = jrpc2.Code(-32602)
)

// Server bridges JSON-RPC requests onto the session controller and the
// navigation pipeline.
type Server struct {
	bridge  jhttp.Bridge
	session *session.Session
	shop    Shop
	version string
}

// Config holds server construction options.
type Config struct {
	Session *session.Session
	Shop    Shop
	Version string
}

// New creates a Server with its method table and HTTP bridge.
func New(cfg Config) *Server {
	s := &Server{
		session: cfg.Session,
		shop:    cfg.Shop,
		version: cfg.Version,
	}

	methods := handler.Map{
		"system.getVersion": handler.New(s.systemGetVersion),

		"profile.list":    handler.New(s.profileList),
		"profile.switch":  handler.New(s.profileSwitch),
		"profile.save":    handler.New(s.profileSave),
		"profile.confirm": handler.New(s.profileConfirm),

		"amazon.search":    handler.New(s.amazonSearch),
		"amazon.product":   handler.New(s.amazonProduct),
		"amazon.cart":      handler.New(s.amazonCart),
		"amazon.addToCart": handler.New(s.amazonAddToCart),
		"amazon.clearCart": handler.New(s.amazonClearCart),
		"amazon.orders":    handler.New(s.amazonOrders),
		"amazon.buyNow":    handler.New(s.amazonBuyNow),
	}

	s.bridge = jhttp.NewBridge(methods, nil)
	return s
}

// ServeHTTP implements http.Handler by delegating to the JSON-RPC bridge.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.bridge.ServeHTTP(w, r)
}

// ListenAndServe blocks serving RPC over HTTP until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	logger.Info("JSON-RPC server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Close releases the bridge.
func (s *Server) Close() error {
	return s.bridge.Close()
}
