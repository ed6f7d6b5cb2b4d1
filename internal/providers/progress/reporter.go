package progress

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/domain/window"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/events"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/logging"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/infrastructure/resilience"
	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/types"
	"go.uber.org/zap"
)

const defaultReportTimeout = 5 * time.Second

// Reporter forwards desktop lifecycle events to the progression service.
// Reports never block desktop operations: the bus hands events over a
// buffered channel and failures are logged, not returned.
type Reporter struct {
	client  *Client
	bus     *events.Bus
	log     *logging.Logger
	timeout time.Duration

	mu     sync.Mutex
	cancel func()
	done   chan struct{}
}

// NewReporter creates a reporter over the given bus
func NewReporter(client *Client, bus *events.Bus, log *logging.Logger) *Reporter {
	if log == nil {
		log = logging.NewNop()
	}
	return &Reporter{
		client:  client,
		bus:     bus,
		log:     log.Scope("progress"),
		timeout: defaultReportTimeout,
	}
}

// WithTimeout overrides the per-report timeout
func (r *Reporter) WithTimeout(d time.Duration) *Reporter {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Start subscribes to the bus and forwards events until Stop is called.
// Calling Start on a running reporter is a no-op.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ch, cancel := r.bus.Subscribe()
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ch, r.done)
}

// Stop cancels the subscription and waits for the forwarding loop to drain
func (r *Reporter) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Reporter) run(ch <-chan events.Event, done chan struct{}) {
	defer close(done)
	for evt := range ch {
		r.handle(evt)
	}
}

// handle translates one bus event into a telemetry post
func (r *Reporter) handle(evt events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	var err error
	switch evt.Type {
	case events.LevelChanged:
		level, ok := evt.Payload.(types.Level)
		if !ok {
			return
		}
		err = r.client.ReportLevel(ctx, level)

	case events.WindowCreated:
		payload, ok := evt.Payload.(window.CreatedPayload)
		if !ok {
			return
		}
		err = r.client.ReportAppOpened(ctx, payload.Window.ID, payload.Window.Title)

	case events.WindowClosed:
		info, ok := evt.Payload.(types.WindowInfo)
		if !ok {
			return
		}
		err = r.client.ReportAppClosed(ctx, info.ID)

	case events.LevelTimeUp:
		fields, ok := evt.Payload.(map[string]interface{})
		if !ok {
			return
		}
		level, _ := fields["level"].(string)
		err = r.client.ReportTimeUp(ctx, level)

	default:
		return
	}

	switch {
	case err == nil:
	case errors.Is(err, resilience.ErrCircuitOpen):
		r.log.Debug("Progression service suspended, dropping report",
			zap.String("event", evt.Type))
	default:
		r.log.Warn("Failed to report progression event",
			zap.String("event", evt.Type),
			zap.Error(err))
	}
}
