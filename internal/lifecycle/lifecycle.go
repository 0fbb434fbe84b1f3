// Package lifecycle tracks process shutdown and runs the drain sequence.
package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"
)

var shuttingDown atomic.Bool

// SetShuttingDown sets the shutdown flag. The health endpoint reports 503
// with status shutting-down while true.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// WaitForSignal blocks until SIGINT or SIGTERM arrives or ctx is done.
func WaitForSignal(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
}

// Server is the part of *http.Server the drain needs.
type Server interface {
	Shutdown(ctx context.Context) error
}

// Drain describes the shutdown sequence for one server.
type Drain struct {
	Server          Server
	Timeout         time.Duration
	InFlight        func() int64
	WaitInFlight    func(ctx context.Context, interval time.Duration) error
	InFlightTimeout time.Duration
	CheckInterval   time.Duration
	Flush           func(ctx context.Context) error
}

// Run marks the process as shutting down, stops the server, waits for
// in-flight requests and flushes telemetry. It returns the first error it
// met; later steps still run.
func (d Drain) Run(logger *zap.Logger) error {
	SetShuttingDown(true)
	logger.Info("graceful shutdown triggered")

	var first error
	keep := func(err error) {
		if first == nil {
			first = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), d.Timeout)
	defer cancel()
	if err := d.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
		keep(err)
	}

	if d.WaitInFlight != nil {
		if d.InFlight != nil {
			logger.Info("waiting for in-flight requests", zap.Int64("count", d.InFlight()))
		}
		waitCtx, waitCancel := context.WithTimeout(context.Background(), d.InFlightTimeout)
		defer waitCancel()
		if err := d.WaitInFlight(waitCtx, d.CheckInterval); err != nil {
			fields := []zap.Field{zap.Error(err)}
			if d.InFlight != nil {
				fields = append(fields, zap.Int64("remaining", d.InFlight()))
			}
			logger.Warn("in-flight requests not completed", fields...)
			keep(err)
		}
	}

	if d.Flush != nil {
		if err := d.Flush(context.Background()); err != nil {
			keep(err)
		}
	}
	return first
}
