package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passing(context.Context) error { return nil }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func serve(t *testing.T, fn http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	fn(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	return w
}

func runTimes(p *probe, n int) {
	for range n {
		p.run(context.Background())
	}
}

func TestLiveEndpoint(t *testing.T) {
	tests := []struct {
		name   string
		runs   int
		status int
		body   string
	}{
		{name: "healthy until proven otherwise", runs: 0, status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "below threshold", runs: 2, status: http.StatusOK, body: `{"status":"ok"}`},
		{name: "at threshold", runs: 3, status: http.StatusServiceUnavailable,
			body: `{"status":"unhealthy","checks":{"db":"connection refused"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New()
			h.AddLivenessCheck("db", time.Second, failing("connection refused"))
			runTimes(h.probes[0], tt.runs)

			w := serve(t, h.LiveEndpoint)
			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("not marked ready", func(t *testing.T) {
		h := New()
		w := serve(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"_readiness":"service is not ready"}}`, w.Body.String())
	})

	t.Run("ready and passing", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("catalog", time.Second, passing)
		h.SetReady(true)
		w := serve(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, h.IsReady())
	})

	t.Run("one failing readiness check", func(t *testing.T) {
		h := New()
		h.AddReadinessCheck("catalog", time.Second, failing("catalog not loaded"))
		h.AddReadinessCheck("postgres", time.Second, passing)
		h.AddLivenessCheck("goroutines", time.Second, failing("ignored by readiness"))
		h.SetReady(true)
		runTimes(h.probes[0], 3)
		runTimes(h.probes[2], 3)

		w := serve(t, h.ReadyEndpoint)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","checks":{"catalog":"catalog not loaded"}}`, w.Body.String())
		assert.False(t, h.IsReady())
	})

	t.Run("shutdown flips readiness", func(t *testing.T) {
		h := New()
		h.SetReady(true)
		require.True(t, h.IsReady())
		h.SetReady(false)
		assert.False(t, h.IsReady())
	})
}

func TestCheckRecovers(t *testing.T) {
	h := New()
	var (
		mu  sync.Mutex
		err = errors.New("down")
	)
	h.Register(Check{Name: "flaky", Kind: Liveness, FailureThreshold: 1, Func: func(context.Context) error {
		mu.Lock()
		defer mu.Unlock()
		return err
	}})
	p := h.probes[0]

	p.run(context.Background())
	assert.Equal(t, "down", p.failure())

	mu.Lock()
	err = nil
	mu.Unlock()
	p.run(context.Background())
	assert.Empty(t, p.failure())
}

func TestStartRunsChecks(t *testing.T) {
	h := New()
	h.Register(Check{Name: "db", Kind: Readiness, FailureThreshold: 1, Func: failing("down")})
	h.SetReady(true)

	h.Start(context.Background(), 5*time.Millisecond)
	defer h.Stop()

	require.Eventually(t, func() bool { return !h.IsReady() }, time.Second, time.Millisecond)
	h.Stop()
	h.Stop()
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}

func TestGCMaxPauseCheck(t *testing.T) {
	assert.NoError(t, GCMaxPauseCheck(time.Hour)(context.Background()))
}
