package event

import (
	"fmt"
	"reflect"
)

// Subtype relates a member event type M to an enclosing event type F.
// It offers the same three operations as Type, scoped to that one pair.
type Subtype[M, F any] interface {
	// Filter recovers an M from an F, if the F holds one.
	Filter(ev F) (M, bool)

	// Upcast widens an M into an F.
	Upcast(ev M) F

	// Check reports whether Filter would succeed on ev.
	Check(ev F) bool
}

// SubtypeOf returns the relation between the member M and the family.
// It returns ErrNotMember if M was not declared as a member.
func SubtypeOf[M, F any](family *Family[F]) (Subtype[M, F], error) {
	tag := reflect.TypeFor[M]()
	if !family.has(tag) {
		return nil, fmt.Errorf("subtype %s of %s: %w", tag, family.Name(), ErrNotMember)
	}
	return memberOf[M, F]{tag: tag}, nil
}

// MustSubtypeOf is like SubtypeOf but panics if M is not a member.
func MustSubtypeOf[M, F any](family *Family[F]) Subtype[M, F] {
	s, err := SubtypeOf[M](family)
	if err != nil {
		panic(err)
	}
	return s
}

type memberOf[M, F any] struct {
	tag reflect.Type
}

func (s memberOf[M, F]) Filter(ev F) (M, bool) {
	m, ok := any(ev).(M)
	return m, ok
}

func (s memberOf[M, F]) Upcast(ev M) F {
	// Membership was checked when the relation was built.
	return any(ev).(F)
}

func (s memberOf[M, F]) Check(ev F) bool {
	boxed := any(ev)
	return boxed != nil && reflect.TypeOf(boxed) == s.tag
}

// AnySubtype returns the relation between E and the universal event type.
// Every event type is trivially a member of it.
func AnySubtype[E any](t Type[E]) Subtype[E, *AnyEvent] {
	return anyMember[E]{t: t}
}

type anyMember[E any] struct {
	t Type[E]
}

func (s anyMember[E]) Filter(ev *AnyEvent) (E, bool) {
	return s.t.FilterAny(ev)
}

func (s anyMember[E]) Upcast(ev E) *AnyEvent {
	return s.t.UpcastToAny(ev)
}

func (s anyMember[E]) Check(ev *AnyEvent) bool {
	return s.t.CheckAny(ev)
}
