//go:build integration
// +build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/config"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/resilience"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/providers/progress"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
)

// flakyService stands in for the progression backend. It can be
// switched between failing and healthy while recording every request
// it receives.
type flakyService struct {
	mu      sync.Mutex
	healthy bool
	reqs    []report
}

type report struct {
	path string
	body map[string]interface{}
}

func (f *flakyService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = sonic.Unmarshal(raw, &body)

	f.mu.Lock()
	f.reqs = append(f.reqs, report{path: r.URL.Path, body: body})
	healthy := f.healthy
	f.mu.Unlock()

	if !healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *flakyService) heal() {
	f.mu.Lock()
	f.healthy = true
	f.mu.Unlock()
}

func (f *flakyService) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *flakyService) received(path, key, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reqs {
		if r.path == path && r.body[key] == value {
			return true
		}
	}
	return false
}

func startFlaky(t *testing.T) (*flakyService, *httptest.Server) {
	t.Helper()
	svc := &flakyService{}
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)
	return svc, srv
}

// A telemetry client facing a dead progression service must stop
// hammering it: after enough consecutive failures the circuit opens
// and reports are dropped without touching the wire.
func TestTelemetryCircuitShedsDeadService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	svc, srv := startFlaky(t)
	client := progress.New(config.ProgressConfig{Address: srv.URL, Enabled: true}, nil)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		require.Error(t, client.ReportAppOpened(ctx, "recon", "Recon Terminal"))
	}
	require.Equal(t, resilience.StateOpen, client.BreakerState())

	wire := svc.count()
	for i := 0; i < 3; i++ {
		err := client.ReportLevel(ctx, types.LevelOf(2))
		assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	}
	assert.Equal(t, wire, svc.count(), "open circuit must not reach the service")
}

// The desktop must not care whether the progression service is up.
// Level changes and app launches proceed normally while the reporter
// eats the failures, and reporting resumes once the service heals.
func TestDesktopUnaffectedByProgressOutage(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	svc, srv := startFlaky(t)
	s := newStack(t)

	client := progress.New(config.ProgressConfig{Address: srv.URL, Enabled: true}, nil)
	reporter := progress.NewReporter(client, s.desktop.Bus(), nil).WithTimeout(time.Second)
	reporter.Start()
	t.Cleanup(reporter.Stop)

	ctx := context.Background()

	// Service is down. The desktop still switches levels and
	// auto-opens the level's apps.
	s.desktop.Launcher().SetLevel(ctx, types.LevelOf(2))
	waitFor(t, func() bool { return s.desktop.Launcher().IsOpen("recon") })

	res, err := s.desktop.Launcher().Open(ctx, "notes", "Case File", nil)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, 2, s.desktop.Windows().Count())

	// The reporter did try: the outage is visible on the wire.
	waitFor(t, func() bool { return svc.count() > 0 })

	// Once the service heals, the next report lands.
	svc.heal()
	s.desktop.Launcher().SetLevel(ctx, types.LevelOf(3))
	waitFor(t, func() bool {
		return svc.received("/api/progress/level", "level", "3")
	})
}

// Drives a breaker-guarded HTTP call through the full trip, probe, and
// close cycle against a service that comes back mid-test.
func TestCircuitRecoversWithService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	svc, srv := startFlaky(t)

	breaker := resilience.New("progress", resilience.Settings{
		MaxRequests: 2,
		Interval:    time.Minute,
		Timeout:     100 * time.Millisecond,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	post := func() error {
		_, err := breaker.Execute(func() (interface{}, error) {
			resp, err := http.Post(srv.URL+"/api/progress/level", "application/json", strings.NewReader(`{"level":"2"}`))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= http.StatusBadRequest {
				return nil, fmt.Errorf("progression service returned %d", resp.StatusCode)
			}
			return nil, nil
		})
		return err
	}

	for i := 0; i < 3; i++ {
		require.Error(t, post())
	}
	require.Equal(t, resilience.StateOpen, breaker.State())
	assert.ErrorIs(t, post(), resilience.ErrCircuitOpen)

	svc.heal()
	time.Sleep(150 * time.Millisecond)
	require.Equal(t, resilience.StateHalfOpen, breaker.State())

	require.NoError(t, post())
	require.NoError(t, post())
	assert.Equal(t, resilience.StateClosed, breaker.State())

	// Closing starts a fresh counting window.
	assert.Equal(t, resilience.Counts{}, breaker.Counts())
}
