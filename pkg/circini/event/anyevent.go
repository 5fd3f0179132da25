package event

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Disposer is implemented by event payloads that own resources.
// Dispose is called exactly once for every erased copy that is never
// recovered into a typed value.
type Disposer interface {
	Dispose()
}

// Cloner is implemented by event payloads that need a deep copy when
// an erased event is broadcast to more than one handler.
//
// Plain value types without Clone are duplicated by Go value copy.
// Payloads that implement Disposer, and reference-kinded payloads
// (pointers, maps, slices, channels, funcs), are only duplicated through
// Clone; without it, cloning the erased event fails with ErrNotCloneable.
type Cloner[E any] interface {
	Clone() E
}

const (
	cellLive uint32 = iota
	cellConsumed
)

// AnyEvent is a dynamically typed event. It owns exactly one payload and
// remembers how to dispose and duplicate it after its static type is gone.
//
// An AnyEvent is consumed exactly once: either a Type recovers the payload
// (ownership moves to the caller) or Release disposes it.
type AnyEvent struct {
	id      string
	tag     reflect.Type
	payload any

	dispose func(any)
	clone   func(any) any

	state atomic.Uint32
}

// Upcast erases a statically typed event into an AnyEvent.
//
// The type tag is the dynamic concrete type of e, so erasing a value held in
// an interface variable tags it with the member type, not the interface.
// Upcast panics on a nil interface value.
func Upcast[E any](e E) *AnyEvent {
	boxed := any(e)
	if boxed == nil {
		panic(ErrNilEvent)
	}
	if already, ok := boxed.(*AnyEvent); ok {
		return already
	}

	ev := &AnyEvent{
		id:      uuid.New().String(),
		tag:     reflect.TypeOf(boxed),
		payload: boxed,
	}

	_, disposes := boxed.(Disposer)
	if disposes {
		ev.dispose = disposePayload
	}

	switch {
	case isCloner[E](boxed):
		ev.clone = func(p any) any {
			return p.(Cloner[E]).Clone()
		}
	case !disposes && !isReference(ev.tag):
		ev.clone = copyPayload
	}

	return ev
}

func isCloner[E any](p any) bool {
	_, ok := p.(Cloner[E])
	return ok
}

// isReference reports whether copying a value of t aliases its contents.
func isReference(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return true
	}
	return false
}

func copyPayload(p any) any {
	// Interface values hold their own copy of value-typed payloads.
	return p
}

func disposePayload(p any) {
	p.(Disposer).Dispose()
}

// ID returns the identifier of the logical event. Clones share it.
func (e *AnyEvent) ID() string {
	return e.id
}

// TypeTag returns the runtime identity of the erased payload's type.
func (e *AnyEvent) TypeTag() reflect.Type {
	return e.tag
}

// TypeName returns the printable name of the erased payload's type.
func (e *AnyEvent) TypeName() string {
	return e.tag.String()
}

// Live reports whether the event still owns its payload.
func (e *AnyEvent) Live() bool {
	return e.state.Load() == cellLive
}

// Release disposes the payload if it is still owned.
// It is safe to call more than once and after recovery.
func (e *AnyEvent) Release() {
	if !e.state.CompareAndSwap(cellLive, cellConsumed) {
		return
	}
	p := e.payload
	e.payload = nil
	if e.dispose != nil {
		e.dispose(p)
	}
}

// Cloneable reports whether Clone can duplicate the payload.
func (e *AnyEvent) Cloneable() bool {
	return e.clone != nil
}

// Clone returns an independent copy of a live event with the same ID and
// type tag. The copy must be consumed separately.
//
// It fails with ErrNotCloneable when duplicating the payload would alias
// it; see Cloner.
func (e *AnyEvent) Clone() (*AnyEvent, error) {
	if !e.Live() {
		return nil, fmt.Errorf("clone %s: %w", e.tag, ErrConsumed)
	}
	if e.clone == nil {
		return nil, fmt.Errorf("clone %s: %w", e.tag, ErrNotCloneable)
	}
	return &AnyEvent{
		id:      e.id,
		tag:     e.tag,
		payload: e.clone(e.payload),
		dispose: e.dispose,
		clone:   e.clone,
	}, nil
}

// String implements fmt.Stringer.
func (e *AnyEvent) String() string {
	state := "live"
	if !e.Live() {
		state = "consumed"
	}
	return fmt.Sprintf("AnyEvent{id: %s, type: %s, state: %s}", e.id, e.tag, state)
}

// MarshalJSON encodes the payload without consuming the event.
func (e *AnyEvent) MarshalJSON() ([]byte, error) {
	if !e.Live() {
		return nil, fmt.Errorf("marshal %s: %w", e.tag, ErrConsumed)
	}
	data, err := json.Marshal(e.payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", e.tag, err)
	}
	return data, nil
}

// take transfers the payload out of the event. It reports false if the
// event was already consumed.
func (e *AnyEvent) take() (any, bool) {
	if !e.state.CompareAndSwap(cellLive, cellConsumed) {
		return nil, false
	}
	p := e.payload
	e.payload = nil
	return p, true
}

// recoverUnchecked moves the payload out as E.
// Callers must have checked the type tag against E first; a mismatch is a
// programming error and panics.
func recoverUnchecked[E any](e *AnyEvent) (E, bool) {
	p, ok := e.take()
	if !ok {
		var zero E
		return zero, false
	}
	return p.(E), true
}
