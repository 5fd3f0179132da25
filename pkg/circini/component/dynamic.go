package component

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/randalmurphal/circini/pkg/circini/event"
)

// WrapOption configures a wrapped component.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	name string
}

// WithHandlerName sets the name used in logs, metrics and errors.
// Default: the component's Go type.
func WithHandlerName(name string) WrapOption {
	return func(c *wrapConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// Dynamic is a statically typed component behind an erased entry point.
//
// It owns the component for its whole lifetime; Close releases it and drops
// every reference the wrapper holds to it.
type Dynamic struct {
	name     string
	receives string

	bound atomic.Pointer[binding]
}

// binding is the typed half of a Dynamic.
type binding struct {
	owned  any
	check  func(*event.AnyEvent) bool
	handle func(context.Context, *event.AnyEvent) (bool, error)
}

// Wrap binds comp to the erased invocation path for events of type t.
func Wrap[E any](t event.Type[E], comp Component[E], opts ...WrapOption) *Dynamic {
	cfg := wrapConfig{name: fmt.Sprintf("%T", comp)}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Dynamic{
		name:     cfg.name,
		receives: t.Name(),
	}
	d.bound.Store(&binding{
		owned: comp,
		check: t.CheckAny,
		handle: func(ctx context.Context, ev *event.AnyEvent) (bool, error) {
			// Anything the component leaves unconsumed is released here.
			defer ev.Release()

			typed, ok := t.FilterAny(ev)
			if !ok {
				return false, nil
			}
			return true, comp.On(ctx, typed)
		},
	})
	return d
}

// WrapReceiver wraps a component that declares its own event type.
func WrapReceiver[E any](r Receiver[E], opts ...WrapOption) *Dynamic {
	return Wrap(r.Receives(), Component[E](r), opts...)
}

// Name returns the handler name.
func (d *Dynamic) Name() string {
	return d.name
}

// Receives returns the name of the event type the component accepts.
func (d *Dynamic) Receives() string {
	return d.receives
}

// Closed reports whether the wrapper has released its component.
func (d *Dynamic) Closed() bool {
	return d.bound.Load() == nil
}

// Accepts reports whether Handle would deliver ev to the component.
func (d *Dynamic) Accepts(ev *event.AnyEvent) bool {
	b := d.bound.Load()
	return b != nil && b.check(ev)
}

// Handle consumes ev. If its type matches, the recovered event is passed to
// the component and matched is true. Otherwise the event is released and
// the component is not touched.
func (d *Dynamic) Handle(ctx context.Context, ev *event.AnyEvent) (matched bool, err error) {
	b := d.bound.Load()
	if b == nil {
		ev.Release()
		return false, ErrComponentClosed
	}
	return b.handle(ctx, ev)
}

// Close releases the owned component exactly once. Components implementing
// io.Closer or event.Disposer are closed or disposed.
func (d *Dynamic) Close() error {
	b := d.bound.Swap(nil)
	if b == nil {
		return nil
	}

	switch c := b.owned.(type) {
	case io.Closer:
		if err := c.Close(); err != nil {
			return fmt.Errorf("close %s: %w", d.name, err)
		}
	case event.Disposer:
		c.Dispose()
	}
	return nil
}
