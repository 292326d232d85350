package management

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/arpa-network/randcast-node/scheduler"
)

// Server exposes this process's local operator surface over plain
// HTTP. It never touches chain state directly — only the fixed
// scheduler, which is the authoritative record of what this node
// currently has running.
type Server struct {
	Fixed     *scheduler.Fixed
	AuthToken string // bearer token ListFixedTasks requires; empty disables auth (local/dev only)

	httpServer *http.Server
}

// NewServer builds the operator HTTP server bound to addr, wiring
// /health and /fixed-tasks through httprouter.
func NewServer(addr string, fixed *scheduler.Fixed, authToken string) *Server {
	s := &Server{Fixed: fixed, AuthToken: authToken}

	router := httprouter.New()
	router.GET("/health", s.handleHealth)
	router.GET("/fixed-tasks", s.requireAuth(s.handleListFixedTasks))

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving until Shutdown is called or the
// listener fails.
func (s *Server) ListenAndServe() error {
	logger.Info("management server starting", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests then closes the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
