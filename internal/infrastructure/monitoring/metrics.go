package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Window metrics
	WindowsOpen    prometheus.Gauge
	WindowsCreated prometheus.Counter
	WindowsClosed  prometheus.Counter
	FocusChanges   prometheus.Counter

	// Launcher metrics
	Launches         *prometheus.CounterVec
	AutoOpenFailures prometheus.Counter
	LoadDuration     prometheus.Histogram

	// Registry metrics
	RegistryApps prometheus.Gauge

	// Session metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot Snapshot

	mu sync.RWMutex
}

// Snapshot holds current metric values for the JSON stats API
type Snapshot struct {
	TotalRequests int64
	TotalErrors   int64
	OpenWindows   int64
	Connections   int64
	TotalDuration float64 // sum of all request durations
	RequestCount  int64   // count for averaging
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phalanx_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "phalanx_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		// Window metrics
		WindowsOpen: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "phalanx_windows_open",
				Help: "Number of open windows",
			},
		),
		WindowsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_windows_created_total",
				Help: "Total number of windows created",
			},
		),
		WindowsClosed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_windows_closed_total",
				Help: "Total number of windows closed",
			},
		),
		FocusChanges: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_focus_changes_total",
				Help: "Total number of focus changes",
			},
		),

		// Launcher metrics
		Launches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phalanx_launches_total",
				Help: "Total number of application launches",
			},
			[]string{"app", "outcome"},
		),
		AutoOpenFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_auto_open_failures_total",
				Help: "Total number of failed auto-open attempts",
			},
		),
		LoadDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "phalanx_app_load_duration_seconds",
				Help:    "Application implementation load duration in seconds",
				Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),

		// Registry metrics
		RegistryApps: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "phalanx_registry_apps",
				Help: "Number of apps in registry",
			},
		),

		// Session metrics
		SessionsSaved: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_sessions_saved_total",
				Help: "Total number of sessions saved",
			},
		),
		SessionsRestored: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "phalanx_sessions_restored_total",
				Help: "Total number of sessions restored",
			},
		),

		// WebSocket metrics
		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "phalanx_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "phalanx_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "phalanx_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if len(status) > 0 && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordLaunch records an application launch attempt
func (m *Metrics) RecordLaunch(app, outcome string) {
	m.Launches.WithLabelValues(app, outcome).Inc()
}

// RecordLoadDuration records how long an implementation load took
func (m *Metrics) RecordLoadDuration(duration time.Duration) {
	m.LoadDuration.Observe(duration.Seconds())
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// SetWindowsOpen sets the number of open windows
func (m *Metrics) SetWindowsOpen(count int) {
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// IncWindowsCreated increments the windows created counter
func (m *Metrics) IncWindowsCreated() {
	m.WindowsCreated.Inc()
}

// IncWindowsClosed increments the windows closed counter
func (m *Metrics) IncWindowsClosed() {
	m.WindowsClosed.Inc()
}

// IncFocusChanges increments the focus change counter
func (m *Metrics) IncFocusChanges() {
	m.FocusChanges.Inc()
}

// IncAutoOpenFailures increments the auto-open failure counter
func (m *Metrics) IncAutoOpenFailures() {
	m.AutoOpenFailures.Inc()
}

// SetRegistryApps sets the number of apps in registry
func (m *Metrics) SetRegistryApps(count int) {
	m.RegistryApps.Set(float64(count))
}

// IncSessionsSaved increments the sessions saved counter
func (m *Metrics) IncSessionsSaved() {
	m.SessionsSaved.Inc()
}

// IncSessionsRestored increments the sessions restored counter
func (m *Metrics) IncSessionsRestored() {
	m.SessionsRestored.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.Connections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.Connections--
	m.mu.Unlock()
}

// GetSnapshot returns current metric values for the JSON stats API
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// UptimeSeconds returns seconds since the collector was created
func (m *Metrics) UptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}
