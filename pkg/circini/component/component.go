package component

import (
	"context"

	"github.com/randalmurphal/circini/pkg/circini/event"
)

// Component reacts to events of type E.
type Component[E any] interface {
	// On handles one event. The component owns ev from here on.
	On(ctx context.Context, ev E) error
}

// Func adapts a function to the Component interface.
type Func[E any] func(ctx context.Context, ev E) error

// On implements Component.
func (f Func[E]) On(ctx context.Context, ev E) error {
	return f(ctx, ev)
}

// Receiver is a Component that declares which events it receives.
type Receiver[E any] interface {
	Component[E]

	// Receives returns the type the component is interested in.
	Receives() event.Type[E]
}

// Dispatch erases e with t and hands it to target.
func Dispatch[E any](ctx context.Context, target Component[*event.AnyEvent], t event.Type[E], e E) error {
	return target.On(ctx, t.UpcastToAny(e))
}
