package parse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/MrWong99/wayfarer/internal/entity"
)

// Diagnostic is one content problem a parser worked around or rejected on.
type Diagnostic struct {
	EntityType entity.Kind
	EntityID   string
	Field      string

	// Value is the offending raw value, if any.
	Value   string
	Message string

	// Suggestion is the closest known tag, when one is similar enough.
	Suggestion string
}

// Sink receives diagnostics. Implementations must be safe to call from the
// ingestion goroutine while other goroutines read them.
type Sink interface {
	Report(d Diagnostic)
}

// SinkFunc adapts a function to [Sink].
type SinkFunc func(Diagnostic)

// Report implements [Sink].
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// SlogSink writes each diagnostic as a warning.
type SlogSink struct {
	Logger *slog.Logger
}

// Report implements [Sink].
func (s SlogSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []slog.Attr{
		slog.String("entity_type", string(d.EntityType)),
		slog.String("entity_id", d.EntityID),
		slog.String("field", d.Field),
	}
	if d.Value != "" {
		attrs = append(attrs, slog.String("value", d.Value))
	}
	if d.Suggestion != "" {
		attrs = append(attrs, slog.String("did_you_mean", d.Suggestion))
	}
	logger.LogAttrs(context.Background(), slog.LevelWarn, "content: "+d.Message, attrs...)
}

// Collector keeps every diagnostic in memory.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report implements [Sink].
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append(c.items, d)
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of diagnostics reported.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Tee fans each diagnostic out to every non-nil sink in order.
func Tee(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	return SinkFunc(func(d Diagnostic) {
		for _, s := range live {
			s.Report(d)
		}
	})
}
