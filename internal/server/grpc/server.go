// Package grpc serves the standard gRPC health service for accountd.
// Probes of the store and the cache drive the reported serving status.
package grpc

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/dmitrijs2005/accountd/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	// ServiceStore and ServiceCache are the per-dependency health entries.
	ServiceStore = "accountd.store"
	ServiceCache = "accountd.cache"
)

// CheckFunc reports whether a dependency is reachable.
type CheckFunc func(ctx context.Context) error

// GRPCServer owns a health.Server and refreshes it on an interval.
// The overall ("") status follows the store only; the cache is best-effort
// and is reported under its own service name.
type GRPCServer struct {
	address  string
	logger   logging.Logger
	health   *health.Server
	store    CheckFunc
	cache    CheckFunc
	interval time.Duration

	mu   sync.Mutex
	last map[string]healthpb.HealthCheckResponse_ServingStatus
}

func NewGRPCServer(address string, l logging.Logger, interval time.Duration, store, cache CheckFunc) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		health:   health.NewServer(),
		store:    store,
		cache:    cache,
		interval: interval,
		last:     map[string]healthpb.HealthCheckResponse_ServingStatus{},
	}
}

// Health exposes the health service, mainly for tests.
func (s *GRPCServer) Health() healthpb.HealthServer {
	return s.health
}

// Probe runs every check once and publishes the results.
func (s *GRPCServer) Probe(ctx context.Context) {
	storeStatus := s.check(ctx, ServiceStore, s.store)
	s.check(ctx, ServiceCache, s.cache)
	s.set(ctx, "", storeStatus)
}

func (s *GRPCServer) check(ctx context.Context, service string, fn CheckFunc) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	if fn != nil {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			s.logger.Warn(ctx, "health check failed", "service", service, "error", err)
			st = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.set(ctx, service, st)
	return st
}

func (s *GRPCServer) set(ctx context.Context, service string, st healthpb.HealthCheckResponse_ServingStatus) {
	s.mu.Lock()
	prev, seen := s.last[service]
	s.last[service] = st
	s.mu.Unlock()

	if seen && prev != st {
		s.logger.Info(ctx, "health status changed", "service", service, "status", st.String())
	}
	s.health.SetServingStatus(service, st)
}

func (s *GRPCServer) watch(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Probe(ctx)
		}
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor))
	healthpb.RegisterHealthServer(srv, s.health)

	s.Probe(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
