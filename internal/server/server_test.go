package server

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-gurjar-dev/TechnoHack/internal/bootstrap"
	"github.com/aman-gurjar-dev/TechnoHack/internal/config"
	"github.com/aman-gurjar-dev/TechnoHack/internal/pkg/cache"
)

func testConfig(port string) *config.Config {
	cfg := &config.Config{}
	cfg.Server.Port = port
	cfg.Server.ReadTimeout = "1s"
	cfg.Server.WriteTimeout = "1s"
	cfg.Server.IdleTimeout = "1s"
	cfg.Server.ShutdownTimeout = "2s"
	return cfg
}

type closeRecorder struct {
	*cache.MemoryCache
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.MemoryCache.Close()
}

func TestRun_StopsCleanlyWhenContextEnds(t *testing.T) {
	// Arrange
	c := &closeRecorder{MemoryCache: cache.NewMemoryCache(time.Minute)}
	srv := New(testConfig("0"), http.NotFoundHandler(), &bootstrap.Dependencies{Cache: c}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	// Act
	time.Sleep(100 * time.Millisecond)
	cancel()

	// Assert
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	assert.True(t, c.closed, "cache should be closed on shutdown")
}

func TestRun_ListenFailureIsReturned(t *testing.T) {
	srv := New(testConfig("-1"), http.NotFoundHandler(), nil, zerolog.Nop())

	err := srv.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestGuard_RecoversPanics(t *testing.T) {
	srv := New(testConfig("0"), http.NotFoundHandler(), nil, zerolog.Nop())

	err := srv.guard("worker", func() error { panic("boom") })()

	require.Error(t, err)
	assert.Equal(t, "worker: panic: boom", err.Error())
}

func TestGuard_PassesThroughErrors(t *testing.T) {
	srv := New(testConfig("0"), http.NotFoundHandler(), nil, zerolog.Nop())

	assert.NoError(t, srv.guard("ok", func() error { return nil })())
}
