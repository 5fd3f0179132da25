package event

import (
	"fmt"
	"reflect"
)

// Type is the capability that moves events of type E across the erasure
// boundary. It is implemented for single event types (Define, Of), for
// event families (Family) and for the universal event type (Any).
type Type[E any] interface {
	// Name returns a printable name for the event type.
	Name() string

	// UpcastToAny erases ev, making it dynamically typed.
	UpcastToAny(ev E) *AnyEvent

	// FilterAny recovers an event of this type from ev.
	// On success ev is consumed and ownership moves to the caller.
	// On failure ev is left untouched and the caller must still consume it.
	FilterAny(ev *AnyEvent) (E, bool)

	// CheckAny reports whether FilterAny would succeed on ev.
	CheckAny(ev *AnyEvent) bool
}

var anyEventType = reflect.TypeFor[*AnyEvent]()

// Define returns the Type of a plain event type E.
//
// Interface types are event families and return ErrFamilyShape; declare
// them with NewFamily. Define[*AnyEvent] returns Any().
func Define[E any]() (Type[E], error) {
	tag := reflect.TypeFor[E]()
	if tag == anyEventType {
		return any(Any()).(Type[E]), nil
	}
	if tag.Kind() == reflect.Interface {
		return nil, fmt.Errorf("define %s: %w", tag, ErrFamilyShape)
	}
	return concrete[E]{tag: tag}, nil
}

// Of is like Define but panics if E cannot be defined.
// It is intended for package-level declarations:
//
//	var KeyDownEvent = event.Of[KeyDown]()
func Of[E any]() Type[E] {
	t, err := Define[E]()
	if err != nil {
		panic(err)
	}
	return t
}

// concrete is the Type of a single, non-family event type.
type concrete[E any] struct {
	tag reflect.Type
}

func (c concrete[E]) Name() string {
	return c.tag.String()
}

func (c concrete[E]) UpcastToAny(ev E) *AnyEvent {
	return Upcast(ev)
}

func (c concrete[E]) FilterAny(ev *AnyEvent) (E, bool) {
	if !c.CheckAny(ev) {
		var zero E
		return zero, false
	}
	return recoverUnchecked[E](ev)
}

func (c concrete[E]) CheckAny(ev *AnyEvent) bool {
	return ev != nil && ev.Live() && ev.tag == c.tag
}

// universal is the Type of AnyEvent itself: every live event matches and
// filtering hands the same event back.
type universal struct{}

// Any returns the universal event type, of which every event type is a member.
func Any() Type[*AnyEvent] {
	return universal{}
}

func (universal) Name() string {
	return "any"
}

func (universal) UpcastToAny(ev *AnyEvent) *AnyEvent {
	return ev
}

func (universal) FilterAny(ev *AnyEvent) (*AnyEvent, bool) {
	if ev == nil || !ev.Live() {
		return nil, false
	}
	return ev, true
}

func (universal) CheckAny(ev *AnyEvent) bool {
	return ev != nil && ev.Live()
}
