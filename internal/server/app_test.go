package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/accountd/internal/logging"
	"github.com/dmitrijs2005/accountd/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.GRPCAddr = "127.0.0.1:0"
	cfg.DatabaseDSN = ":memory:"
	cfg.CacheURL = ""
	cfg.BcryptCost = 4
	cfg.ShutdownTimeout = time.Second
	return cfg
}

func TestNewApp_SQLiteWithoutCache(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.NopLogger{})
	require.NoError(t, err)
	defer app.close(context.Background())

	srv := httptest.NewServer(app.Handler())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/auth/register", "application/json", strings.NewReader(
		`{"name":"Ann","email":"ann@x.com","password":"secret1","age":30,"dob":"1994-01-01","contact":"5551234567"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewApp_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.CacheURL = "redis://" + mr.Addr() + "/0"
	cfg.MetricsEnabled = false

	app, err := NewApp(context.Background(), cfg, logging.NopLogger{})
	require.NoError(t, err)
	defer app.close(context.Background())

	assert.Nil(t, app.metrics)
	assert.NoError(t, app.cache.Ping(context.Background()))
}

func TestNewApp_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.DatabaseDSN = "mysql://nope"
	_, err := NewApp(context.Background(), cfg, logging.NopLogger{})
	assert.ErrorContains(t, err, "db init error")

	cfg = testConfig()
	cfg.CacheURL = "http://nope"
	_, err = NewApp(context.Background(), cfg, logging.NopLogger{})
	assert.ErrorContains(t, err, "cache init error")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), testConfig(), logging.NopLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
