package graceful

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fintrack/fintrack_service/pkg/logger"
)

// Closer is any component that needs to release resources on shutdown
type Closer interface {
	Close() error
}

// CloserFunc adapts a plain function to Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

type namedCloser struct {
	name string
	c    Closer
}

// ShutdownManager drains the HTTP server then closes registered components in reverse order
type ShutdownManager struct {
	server  *http.Server
	closers []namedCloser
	timeout time.Duration
	logger  *logger.Logger
}

func NewShutdownManager(server *http.Server, timeout time.Duration, logger *logger.Logger) *ShutdownManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		server:  server,
		timeout: timeout,
		logger:  logger,
	}
}

// Register adds a component to close after the server stops accepting requests
func (sm *ShutdownManager) Register(name string, c Closer) {
	sm.closers = append(sm.closers, namedCloser{name: name, c: c})
}

// WaitForShutdown blocks until SIGINT/SIGTERM and then shuts everything down
func (sm *ShutdownManager) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sm.Shutdown()
}

// Shutdown performs the shutdown sequence immediately
func (sm *ShutdownManager) Shutdown() {
	sm.logger.Info("Shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	if err := sm.server.Shutdown(ctx); err != nil {
		sm.logger.Error("Server forced shutdown", "error", err)
	}

	for i := len(sm.closers) - 1; i >= 0; i-- {
		nc := sm.closers[i]
		if err := nc.c.Close(); err != nil {
			sm.logger.Warn("Component shutdown error", "component", nc.name, "error", err)
		}
	}

	sm.logger.Info("Shutdown complete")
}
