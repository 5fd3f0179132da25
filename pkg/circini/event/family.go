package event

import (
	"fmt"
	"reflect"
	"strings"
)

// DefaultIndexThreshold is the member count above which a family switches
// from a linear scan to a map lookup for membership tests.
const DefaultIndexThreshold = 8

// MemberDecl declares one member type of the event family F.
// Create it with Member.
type MemberDecl[F any] struct {
	tag   reflect.Type
	erase func(F) *AnyEvent
}

// Member declares M as a member of the event family F.
// The declaration is checked by NewFamily.
func Member[F, M any]() MemberDecl[F] {
	return MemberDecl[F]{
		tag: reflect.TypeFor[M](),
		erase: func(f F) *AnyEvent {
			return Upcast(any(f).(M))
		},
	}
}

// FamilyOption configures a Family.
type FamilyOption func(*familyConfig)

type familyConfig struct {
	name           string
	indexThreshold int
}

// WithFamilyName overrides the family name (default: the interface type name).
func WithFamilyName(name string) FamilyOption {
	return func(c *familyConfig) {
		c.name = name
	}
}

// WithIndexThreshold sets the member count above which membership is
// tested with a map instead of a linear scan.
// Default: DefaultIndexThreshold
func WithIndexThreshold(n int) FamilyOption {
	return func(c *familyConfig) {
		if n >= 0 {
			c.indexThreshold = n
		}
	}
}

// Family is the Type of an event family: a closed set of concrete member
// types sharing the interface F. Recovering from a family yields an F that
// carries whichever member the event was.
//
// The usual shape is a sealed interface:
//
//	type KeyEvent interface{ isKeyEvent() }
//
//	func (KeyDown) isKeyEvent() {}
//	func (KeyUp) isKeyEvent()   {}
//
//	var KeyEvents = event.MustFamily[KeyEvent](
//	    event.Member[KeyEvent, KeyDown](),
//	    event.Member[KeyEvent, KeyUp](),
//	)
//
// A Family is immutable once built and safe for concurrent use.
type Family[F any] struct {
	name    string
	members []MemberDecl[F]
	index   map[reflect.Type]int // nil when the family is scanned linearly
}

// NewFamily builds the event family F from its member declarations.
//
// F must be an interface type. Every member must be a concrete type that
// implements F, and no member may be listed twice.
func NewFamily[F any](members []MemberDecl[F], opts ...FamilyOption) (*Family[F], error) {
	iface := reflect.TypeFor[F]()
	if iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("family %s: %w: family type must be an interface", iface, ErrInvalidMember)
	}

	cfg := familyConfig{
		name:           iface.String(),
		indexThreshold: DefaultIndexThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	seen := make(map[reflect.Type]struct{}, len(members))
	for _, m := range members {
		if m.tag == nil {
			return nil, fmt.Errorf("family %s: %w: zero member declaration", cfg.name, ErrInvalidMember)
		}
		if m.tag.Kind() == reflect.Interface {
			return nil, fmt.Errorf("family %s: %w: %s is an interface", cfg.name, ErrInvalidMember, m.tag)
		}
		if !m.tag.Implements(iface) {
			return nil, fmt.Errorf("family %s: %w: %s does not implement %s", cfg.name, ErrInvalidMember, m.tag, iface)
		}
		if _, dup := seen[m.tag]; dup {
			return nil, fmt.Errorf("family %s: %w: %s", cfg.name, ErrDuplicateMember, m.tag)
		}
		seen[m.tag] = struct{}{}
	}

	f := &Family[F]{
		name:    cfg.name,
		members: append([]MemberDecl[F](nil), members...),
	}
	if len(members) > cfg.indexThreshold {
		f.index = make(map[reflect.Type]int, len(members))
		for i, m := range members {
			f.index[m.tag] = i
		}
	}
	return f, nil
}

// MustFamily is like NewFamily but panics on an invalid declaration.
func MustFamily[F any](members ...MemberDecl[F]) *Family[F] {
	f, err := NewFamily(members)
	if err != nil {
		panic(err)
	}
	return f
}

// Name returns the family name.
func (f *Family[F]) Name() string {
	return f.name
}

// Members returns the type tags of the family members in declaration order.
func (f *Family[F]) Members() []reflect.Type {
	tags := make([]reflect.Type, len(f.members))
	for i, m := range f.members {
		tags[i] = m.tag
	}
	return tags
}

// Indexed reports whether membership is tested with a map lookup.
func (f *Family[F]) Indexed() bool {
	return f.index != nil
}

// String implements fmt.Stringer.
func (f *Family[F]) String() string {
	names := make([]string, len(f.members))
	for i, m := range f.members {
		names[i] = m.tag.String()
	}
	return f.name + "{" + strings.Join(names, ", ") + "}"
}

// lookup returns the position of tag among the members, or -1.
func (f *Family[F]) lookup(tag reflect.Type) int {
	if f.index != nil {
		if i, ok := f.index[tag]; ok {
			return i
		}
		return -1
	}
	for i, m := range f.members {
		if m.tag == tag {
			return i
		}
	}
	return -1
}

// UpcastToAny erases ev under the tag of the member it holds.
// A value whose dynamic type was never declared is still erased, but no
// family filter will accept it.
func (f *Family[F]) UpcastToAny(ev F) *AnyEvent {
	boxed := any(ev)
	if boxed == nil {
		panic(ErrNilEvent)
	}
	if i := f.lookup(reflect.TypeOf(boxed)); i >= 0 {
		return f.members[i].erase(ev)
	}
	return Upcast(ev)
}

// FilterAny recovers ev as the family interface if its type is a member.
func (f *Family[F]) FilterAny(ev *AnyEvent) (F, bool) {
	if !f.CheckAny(ev) {
		var zero F
		return zero, false
	}
	p, ok := ev.take()
	if !ok {
		var zero F
		return zero, false
	}
	return p.(F), true
}

// CheckAny reports whether ev holds a member of the family.
func (f *Family[F]) CheckAny(ev *AnyEvent) bool {
	return ev != nil && ev.Live() && f.lookup(ev.tag) >= 0
}

// has reports whether tag is a member type.
func (f *Family[F]) has(tag reflect.Type) bool {
	return f.lookup(tag) >= 0
}
