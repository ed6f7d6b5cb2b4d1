package monitoring

import (
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Usage aggregates per-application focus and load timing samples.
// The window manager reports focus transitions; the registry reports
// implementation load durations. Quantiles feed the JSON stats API.
type Usage struct {
	mu         sync.Mutex
	focusSpans map[string][]float64 // seconds per focus stretch
	loads      map[string][]float64 // seconds per implementation load
	opens      map[string]int
	current    string
	since      time.Time
	now        func() time.Time
}

// AppUsage summarizes one application's recorded activity.
type AppUsage struct {
	Opens          int     `json:"opens"`
	FocusSeconds   float64 `json:"focus_seconds"`
	MeanFocus      float64 `json:"mean_focus_seconds"`
	P95Focus       float64 `json:"p95_focus_seconds"`
	MeanLoad       float64 `json:"mean_load_seconds,omitempty"`
	P95Load        float64 `json:"p95_load_seconds,omitempty"`
	FocusStretches int     `json:"focus_stretches"`
}

// NewUsage creates an empty usage aggregator.
func NewUsage() *Usage {
	return &Usage{
		focusSpans: make(map[string][]float64),
		loads:      make(map[string][]float64),
		opens:      make(map[string]int),
		now:        time.Now,
	}
}

// RecordOpen counts one application open.
func (u *Usage) RecordOpen(app string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.opens[app]++
}

// FocusChanged closes the current focus stretch and starts one for app.
// An empty app means nothing is focused.
func (u *Usage) FocusChanged(app string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	now := u.now()
	if u.current != "" && u.current != app {
		u.focusSpans[u.current] = append(u.focusSpans[u.current], now.Sub(u.since).Seconds())
	}
	if u.current != app {
		u.current = app
		u.since = now
	}
}

// WindowClosed ends the focus stretch if the closed window held focus.
func (u *Usage) WindowClosed(app string) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.current != app {
		return
	}
	now := u.now()
	u.focusSpans[app] = append(u.focusSpans[app], now.Sub(u.since).Seconds())
	u.current = ""
}

// RecordLoad records one implementation load duration.
func (u *Usage) RecordLoad(app string, d time.Duration) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.loads[app] = append(u.loads[app], d.Seconds())
}

// Stats returns a per-application summary.
func (u *Usage) Stats() map[string]AppUsage {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make(map[string]AppUsage)
	for app := range u.opens {
		out[app] = u.summarizeLocked(app)
	}
	for app := range u.focusSpans {
		if _, ok := out[app]; !ok {
			out[app] = u.summarizeLocked(app)
		}
	}
	return out
}

func (u *Usage) summarizeLocked(app string) AppUsage {
	summary := AppUsage{Opens: u.opens[app]}

	if spans := u.focusSpans[app]; len(spans) > 0 {
		sorted := append([]float64(nil), spans...)
		sort.Float64s(sorted)
		summary.FocusStretches = len(sorted)
		summary.FocusSeconds = floatSum(sorted)
		summary.MeanFocus = stat.Mean(sorted, nil)
		summary.P95Focus = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	if loads := u.loads[app]; len(loads) > 0 {
		sorted := append([]float64(nil), loads...)
		sort.Float64s(sorted)
		summary.MeanLoad = stat.Mean(sorted, nil)
		summary.P95Load = stat.Quantile(0.95, stat.Empirical, sorted, nil)
	}

	return summary
}

func floatSum(xs []float64) float64 {
	var total float64
	for _, x := range xs {
		total += x
	}
	return total
}
