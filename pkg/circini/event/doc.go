// Package event provides type-erased events for circini.
//
// # Overview
//
// Components declare the statically typed events they receive, while the
// dispatch layer moves events around without knowing their types. This
// package provides the boundary between the two:
//
//   - AnyEvent owns one erased payload plus its runtime type tag
//   - Type[E] erases (UpcastToAny), recovers (FilterAny) and tests (CheckAny)
//   - Family[F] does the same for a closed set of member types
//   - Subtype[M, F] relates a member to its family
//
// # Defining Events
//
// Any plain Go type can be an event. Define (or Of) produces its Type:
//
//	type KeyDown struct{ Key int }
//
//	var KeyDownEvent = event.Of[KeyDown]()
//
//	ev := KeyDownEvent.UpcastToAny(KeyDown{Key: 17})
//	down, ok := KeyDownEvent.FilterAny(ev) // KeyDown{Key: 17}, true
//
// # Event Families
//
// A family is a sealed interface listing its members explicitly:
//
//	type KeyEvent interface{ isKeyEvent() }
//
//	var KeyEvents = event.MustFamily[KeyEvent](
//	    event.Member[KeyEvent, KeyDown](),
//	    event.Member[KeyEvent, KeyUp](),
//	)
//
// Filtering through the family yields a KeyEvent holding the concrete member,
// so a type switch picks the branch.
//
// # Ownership
//
// An AnyEvent is consumed exactly once. A successful FilterAny moves the
// payload to the caller. A failed FilterAny leaves the event untouched, and
// the holder must eventually call Release, which disposes payloads that
// implement Disposer. Release is idempotent, so deferring it is always safe.
//
// Broadcasting to several handlers uses Clone: every receiver gets its own
// copy and every copy is consumed independently. Plain values are copied.
// Disposers and pointer-like payloads must implement Cloner, otherwise Clone
// returns ErrNotCloneable rather than handing out aliases of one payload.
// MarshalJSON reads the payload without consuming it.
package event
