package server

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component under lifecycle control. Start blocks
// for the lifetime of the service; Stop asks it to wind down and must be
// safe to call while Start is still blocked.
type Service interface {
	Start() error
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// Lifecycle starts registered services, waits for a shutdown trigger, and
// stops them again in reverse registration order. Shutdown triggers are a
// SIGINT or SIGTERM signal, cancellation of the context passed to Run, or
// any service's Start returning an error.
type Lifecycle struct {
	logger *zap.Logger

	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name string
	svc  Service
}

// NewLifecycle creates an empty Lifecycle.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a service under a name used in lifecycle log lines.
// Start order follows registration order; stop order is the reverse.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, svc: svc})
}

// Run launches every registered service and blocks until a shutdown trigger
// fires, then stops all services and waits for them.
//
// Postcondition: Every service's Stop has returned. Run returns the first
// Start error, or nil when shutdown came from a signal or the context.
func (l *Lifecycle) Run(ctx context.Context) error {
	started := time.Now()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l.mu.Lock()
	services := l.services
	l.mu.Unlock()

	failures := make(chan error, len(services))
	for _, ns := range services {
		ns := ns
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			if err := ns.svc.Start(); err != nil {
				failures <- fmt.Errorf("service %s: %w", ns.name, err)
			}
		}()
	}

	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(started)),
	)

	var runErr error
	select {
	case runErr = <-failures:
		l.logger.Error("service failed, shutting down", zap.Error(runErr))
	case <-ctx.Done():
		l.logger.Info("shutdown requested")
	}

	l.stopAll(services)

	l.logger.Info("shutdown complete",
		zap.Duration("total_uptime", time.Since(started)),
	)
	return runErr
}

// stopAll stops services in reverse registration order so that dependents
// go down before the things they depend on.
func (l *Lifecycle) stopAll(services []namedService) {
	began := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.svc.Stop()
		l.logger.Info("service stopped", zap.String("service", ns.name))
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(began)),
	)
}
