package event

import "errors"

// Sentinel errors for event type declarations.
var (
	// ErrFamilyShape indicates Define was asked for an interface type.
	// Event families must be declared with NewFamily.
	ErrFamilyShape = errors.New("interface event types must be declared as a family")

	// ErrNotMember indicates a type is not a member of an event family.
	ErrNotMember = errors.New("type is not a member of the event family")

	// ErrDuplicateMember indicates a family lists the same member twice.
	ErrDuplicateMember = errors.New("duplicate family member")

	// ErrInvalidMember indicates a declared member cannot belong to the family.
	ErrInvalidMember = errors.New("invalid family member")
)

// Sentinel errors for erased events.
var (
	// ErrConsumed indicates the event no longer owns its payload.
	ErrConsumed = errors.New("event already consumed")

	// ErrNotCloneable indicates a payload that cannot be duplicated without
	// aliasing it. Implement Cloner to make it cloneable.
	ErrNotCloneable = errors.New("event payload is not cloneable")

	// ErrNilEvent indicates an attempt to erase a nil interface value.
	ErrNilEvent = errors.New("cannot erase a nil event")
)
