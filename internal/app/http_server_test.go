package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	healthcheck "github.com/vladislavdragonenkov/carrinho/internal/health"
)

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func waitFor(t *testing.T, url string) *http.Response {
	t.Helper()
	var lastErr error
	for i := 0; i < 50; i++ {
		resp, err := http.Get(url)
		if err == nil {
			return resp
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server did not start: %v", lastErr)
	return nil
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errors.New("storage down") }

func TestStartMetricsServer_Endpoints(t *testing.T) {
	logger := log.WithField("test", "metrics-server")
	port := freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startMetricsServer(ctx, fmt.Sprintf("127.0.0.1:%d", port), logger, healthcheck.NewHandler("test"))

	resp := waitFor(t, base+"/livez")
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	for _, path := range []string{"/metrics", "/healthz", "/readyz"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestStartMetricsServer_UnhealthyStorage(t *testing.T) {
	logger := log.WithField("test", "metrics-server-unhealthy")
	port := freePort(t)
	base := fmt.Sprintf("http://127.0.0.1:%d", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := healthcheck.NewHandler("test")
	health.Register("storage", healthcheck.NewPingChecker("storage", downPinger{}))
	startMetricsServer(ctx, fmt.Sprintf("127.0.0.1:%d", port), logger, health)

	waitFor(t, base+"/livez").Body.Close()

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(base + path)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode, path)
	}
}

func TestStartMetricsServer_StopsOnCancel(t *testing.T) {
	logger := log.WithField("test", "metrics-server-shutdown")
	port := freePort(t)
	url := fmt.Sprintf("http://127.0.0.1:%d/livez", port)

	ctx, cancel := context.WithCancel(context.Background())
	startMetricsServer(ctx, fmt.Sprintf("127.0.0.1:%d", port), logger, healthcheck.NewHandler("test"))
	waitFor(t, url).Body.Close()

	cancel()
	time.Sleep(200 * time.Millisecond)

	_, err := http.Get(url)
	require.Error(t, err)
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	shutdownHTTP(nil, time.Second, log.WithField("test", "nil-server"))
}
