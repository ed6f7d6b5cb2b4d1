package tracing

import (
	"context"
	"time"

	"github.com/MACantara/Phalanx-Cyber-Academy-sub002/internal/shared/id"
	"go.uber.org/zap"
)

// TraceID identifies one request end to end, from the browser through
// the desktop service.
type TraceID string

// SpanID identifies a single operation inside a trace.
type SpanID string

// Propagation headers shared with the browser client.
const (
	HeaderTrace = "X-Trace-ID"
	HeaderSpan  = "X-Span-ID"
)

const spanBuffer = 1000

// Span records one timed operation. A span belongs to the goroutine
// handling its request and is not safe for concurrent use.
type Span struct {
	Trace    TraceID
	ID       SpanID
	Parent   SpanID
	Name     string
	Service  string
	Started  time.Time
	Duration time.Duration
	Err      error

	tags []zap.Field
}

// Tag attaches a key/value pair emitted with the span.
func (s *Span) Tag(key, value string) {
	s.tags = append(s.tags, zap.String(key, value))
}

// TagInt attaches a numeric tag.
func (s *Span) TagInt(key string, value int) {
	s.tags = append(s.tags, zap.Int(key, value))
}

// Fail records the error that ended the span.
func (s *Span) Fail(err error) {
	s.Err = err
}

// End stamps the span duration. Call once, before Submit.
func (s *Span) End() {
	s.Duration = time.Since(s.Started)
}

// Tracer collects spans off the request path and emits them through
// the structured logger.
type Tracer struct {
	service string
	log     *zap.Logger
	queue   chan *Span
}

// New starts a tracer for the named service.
func New(service string, log *zap.Logger) *Tracer {
	t := &Tracer{
		service: service,
		log:     log,
		queue:   make(chan *Span, spanBuffer),
	}
	go t.drain()
	return t
}

// Start opens a span under the trace carried by ctx, minting a fresh
// trace when ctx carries none. The returned context parents any spans
// started beneath it.
func (t *Tracer) Start(ctx context.Context, name string) (*Span, context.Context) {
	trace, _ := ctx.Value(ctxTrace).(TraceID)
	if trace == "" {
		trace = TraceID(id.NewRequestID())
	}
	parent, _ := ctx.Value(ctxSpan).(SpanID)

	span := &Span{
		Trace:   trace,
		ID:      SpanID(id.NewRequestID()),
		Parent:  parent,
		Name:    name,
		Service: t.service,
		Started: time.Now(),
	}

	ctx = context.WithValue(ctx, ctxTrace, trace)
	ctx = context.WithValue(ctx, ctxSpan, span.ID)
	return span, ctx
}

// Submit queues a finished span. When the queue is full the span is
// dropped rather than blocking the request path.
func (t *Tracer) Submit(s *Span) {
	select {
	case t.queue <- s:
	default:
		t.log.Warn("span queue full, dropping span",
			zap.String("trace_id", string(s.Trace)),
			zap.String("operation", s.Name),
		)
	}
}

func (t *Tracer) drain() {
	for span := range t.queue {
		t.emit(span)
	}
}

func (t *Tracer) emit(s *Span) {
	fields := append([]zap.Field{
		zap.String("trace_id", string(s.Trace)),
		zap.String("span_id", string(s.ID)),
		zap.String("operation", s.Name),
		zap.String("service", s.Service),
		zap.Duration("duration", s.Duration),
	}, s.tags...)
	if s.Parent != "" {
		fields = append(fields, zap.String("parent_id", string(s.Parent)))
	}
	if s.Err != nil {
		t.log.Error("span finished with error", append(fields, zap.Error(s.Err))...)
		return
	}
	t.log.Info("span finished", fields...)
}

type ctxKey int

const (
	ctxTrace ctxKey = iota
	ctxSpan
)

// withRemoteParent seeds ctx with identifiers received from a caller,
// so Start continues the remote trace instead of minting a new one.
func withRemoteParent(ctx context.Context, trace TraceID, parent SpanID) context.Context {
	if trace != "" {
		ctx = context.WithValue(ctx, ctxTrace, trace)
	}
	if parent != "" {
		ctx = context.WithValue(ctx, ctxSpan, parent)
	}
	return ctx
}

// TraceFrom returns the trace ID carried by ctx, if any.
func TraceFrom(ctx context.Context) TraceID {
	trace, _ := ctx.Value(ctxTrace).(TraceID)
	return trace
}

// SpanFrom returns the active span ID carried by ctx, if any.
func SpanFrom(ctx context.Context) SpanID {
	span, _ := ctx.Value(ctxSpan).(SpanID)
	return span
}
