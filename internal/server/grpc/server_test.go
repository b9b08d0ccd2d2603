package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/accountd/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("down") }

func statusOf(t *testing.T, s *GRPCServer, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	resp, err := s.Health().Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		t.Fatalf("Check(%q) error: %v", service, err)
	}
	return resp.GetStatus()
}

func TestProbe_AllHealthy(t *testing.T) {
	s := NewGRPCServer("", logging.NopLogger{}, 0, ok, ok)
	s.Probe(context.Background())

	for _, svc := range []string{"", ServiceStore, ServiceCache} {
		if got := statusOf(t, s, svc); got != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("%q: want SERVING, got %v", svc, got)
		}
	}
}

func TestProbe_StoreDown(t *testing.T) {
	s := NewGRPCServer("", logging.NopLogger{}, 0, down, ok)
	s.Probe(context.Background())

	if got := statusOf(t, s, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("overall: want NOT_SERVING, got %v", got)
	}
	if got := statusOf(t, s, ServiceStore); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("store: want NOT_SERVING, got %v", got)
	}
}

func TestProbe_CacheDownKeepsServing(t *testing.T) {
	s := NewGRPCServer("", logging.NopLogger{}, 0, ok, down)
	s.Probe(context.Background())

	if got := statusOf(t, s, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("overall: want SERVING, got %v", got)
	}
	if got := statusOf(t, s, ServiceCache); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("cache: want NOT_SERVING, got %v", got)
	}
}

func TestProbe_Recovers(t *testing.T) {
	var healthy atomic.Bool
	store := func(context.Context) error {
		if healthy.Load() {
			return nil
		}
		return errors.New("down")
	}
	s := NewGRPCServer("", logging.NopLogger{}, 0, store, nil)

	s.Probe(context.Background())
	if got := statusOf(t, s, ""); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("want NOT_SERVING, got %v", got)
	}

	healthy.Store(true)
	s.Probe(context.Background())
	if got := statusOf(t, s, ""); got != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("want SERVING after recovery, got %v", got)
	}
}

func TestServe_HealthOverConnection(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	s := NewGRPCServer("", logging.NopLogger{}, 10*time.Millisecond, ok, down)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("want SERVING, got %v", resp.GetStatus())
	}

	resp, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceCache})
	if err != nil {
		t.Fatalf("Check cache error: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("cache: want NOT_SERVING, got %v", resp.GetStatus())
	}

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("unknown service: want NotFound, got %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.NopLogger{}, 0, ok, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.NopLogger{}, 0, ok, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

func TestLoggingInterceptor_PassesThrough(t *testing.T) {
	s := NewGRPCServer("", logging.NopLogger{}, 0, ok, ok)
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	resp, err := s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Fatalf("unexpected result: %v, %v", resp, err)
	}

	wantErr := status.Error(codes.Unavailable, "x")
	_, err = s.loggingInterceptor(context.Background(), "req", info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want handler error, got %v", err)
	}
}
