package component

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/randalmurphal/circini/pkg/circini/event"
	"github.com/randalmurphal/circini/pkg/circini/observability"
)

// Container broadcasts erased events to an ordered list of components.
//
// A Container is itself a Component of the universal event type, so
// containers nest. Every accepting component owns the event it receives:
// all but the last get a clone, the last gets the original. Components that
// do not accept it never see a copy.
//
// Dispatch is synchronous: On returns after every accepting component has
// run, in registration order.
type Container struct {
	config containerConfig

	mu     sync.RWMutex
	comps  []*Dynamic
	closed bool
}

// Compile-time interface checks.
var (
	_ Component[*event.AnyEvent] = (*Container)(nil)
	_ Receiver[*event.AnyEvent]  = (*Container)(nil)
)

// NewContainer creates an empty container.
func NewContainer(opts ...Option) *Container {
	cfg := defaultContainerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Container{config: cfg}
}

// Attach wraps comp for events of type t and appends it to c.
func Attach[E any](c *Container, t event.Type[E], comp Component[E], opts ...WrapOption) (*Dynamic, error) {
	d := Wrap(t, comp, opts...)
	if err := c.Add(d); err != nil {
		return nil, err
	}
	return d, nil
}

// AttachReceiver appends a component that declares its own event type.
func AttachReceiver[E any](c *Container, r Receiver[E], opts ...WrapOption) (*Dynamic, error) {
	d := WrapReceiver(r, opts...)
	if err := c.Add(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Name returns the container name.
func (c *Container) Name() string {
	return c.config.name
}

// Receives returns the universal event type.
func (c *Container) Receives() event.Type[*event.AnyEvent] {
	return event.Any()
}

// Add appends an already wrapped component.
func (c *Container) Add(d *Dynamic) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrContainerClosed
	}
	c.comps = append(c.comps, d)
	return nil
}

// Detach removes d without closing it. It reports whether d was attached.
func (c *Container) Detach(d *Dynamic) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.comps, d)
	if i < 0 {
		return false
	}
	c.comps = slices.Delete(c.comps, i, i+1)
	return true
}

// Len returns the number of attached components.
func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.comps)
}

// Names returns the attached handler names in registration order.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, len(c.comps))
	for i, d := range c.comps {
		names[i] = d.Name()
	}
	return names
}

// On broadcasts ev to every attached component that accepts it.
// The container takes ownership of ev.
//
// Every accepting component but the last receives a clone; the last one
// receives ev itself. An event that is not cloneable can therefore reach
// at most one component; with more accepting ones the broadcast fails with
// event.ErrNotCloneable before any component runs.
//
// A type mismatch is not an error. Handler errors are wrapped in
// HandlerError and joined; with WithStopOnError the broadcast stops at the
// first one.
func (c *Container) On(ctx context.Context, ev *event.AnyEvent) error {
	if ev == nil {
		return nil
	}
	defer ev.Release()

	c.mu.RLock()
	closed := c.closed
	comps := slices.Clone(c.comps)
	c.mu.RUnlock()

	if closed {
		return ErrContainerClosed
	}

	depth := dispatchDepth(ctx)
	if depth >= c.config.maxDepth {
		return fmt.Errorf("container %s at depth %d: %w", c.config.name, depth, ErrMaxDepth)
	}
	ctx = withDispatchDepth(ctx, depth+1)

	start := time.Now()
	done := observability.TimedOperation()
	eventID := ev.ID()
	eventType := ev.TypeName()
	logger := observability.EnrichLogger(c.config.logger, c.config.name, depth)

	ctx, span := c.config.spans.StartDispatchSpan(ctx, c.config.name, eventID, eventType)
	observability.LogDispatchStart(logger, eventID, eventType, len(comps))

	accepting := make([]*Dynamic, 0, len(comps))
	for _, d := range comps {
		if !d.Accepts(ev) {
			observability.LogHandlerSkipped(logger, d.Name(), eventType)
			c.config.metrics.RecordSkip(ctx, d.Name(), eventType)
			continue
		}
		accepting = append(accepting, d)
	}
	skipped := len(comps) - len(accepting)

	var errs []error
	matched := 0

	if len(accepting) > 1 && !ev.Cloneable() {
		errs = append(errs, fmt.Errorf("broadcast %s to %d components: %w", eventType, len(accepting), event.ErrNotCloneable))
		accepting = nil
	}

	last := len(accepting) - 1
	for i, d := range accepting {
		in := ev
		if i < last {
			cp, err := ev.Clone()
			if err != nil {
				errs = append(errs, err)
				break
			}
			in = cp
		}

		matched++
		err := c.invoke(ctx, d, in)
		c.config.metrics.RecordHandler(ctx, d.Name(), eventType, err)
		if err != nil {
			observability.LogHandlerError(logger, d.Name(), eventType, err)
			errs = append(errs, err)
			if c.config.stopOnError {
				break
			}
		}
	}

	err := errors.Join(errs...)
	c.config.spans.AddSpanEvent(ctx, "dispatch.summary",
		attribute.Int("matched", matched),
		attribute.Int("skipped", skipped),
	)
	c.config.spans.EndSpanWithError(span, err)
	c.config.metrics.RecordDispatch(ctx, c.config.name, eventType, time.Since(start))
	observability.LogDispatchComplete(logger, eventID, done(), matched, skipped)

	return err
}

// invoke hands one event to one component.
func (c *Container) invoke(ctx context.Context, d *Dynamic, ev *event.AnyEvent) (err error) {
	ctx, span := c.config.spans.StartHandlerSpan(ctx, d.Name())
	defer func() {
		c.config.spans.EndSpanWithError(span, err)
	}()
	defer ev.Release()

	if c.config.recoverPanics {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{
					Handler:   d.Name(),
					EventType: ev.TypeName(),
					Value:     r,
					Stack:     string(debug.Stack()),
				}
			}
		}()
	}

	if _, herr := d.Handle(ctx, ev); herr != nil {
		return &HandlerError{
			Handler:   d.Name(),
			EventID:   ev.ID(),
			EventType: ev.TypeName(),
			Err:       herr,
		}
	}
	return nil
}

// Close closes every attached component and rejects further dispatch.
// It is safe to call more than once.
func (c *Container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	comps := c.comps
	c.comps = nil
	c.mu.Unlock()

	var errs []error
	for _, d := range comps {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Context keys for nested dispatch depth tracking.
type contextKey string

const dispatchDepthKey contextKey = "dispatch_depth"

func dispatchDepth(ctx context.Context) int {
	if v, ok := ctx.Value(dispatchDepthKey).(int); ok {
		return v
	}
	return 0
}

func withDispatchDepth(ctx context.Context, depth int) context.Context {
	return context.WithValue(ctx, dispatchDepthKey, depth)
}
