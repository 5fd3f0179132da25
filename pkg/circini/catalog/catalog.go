// Package catalog names event types so erased events can leave the process.
//
// A Catalog maps a stable name and schema version to an event Type and a
// JSON encoding. Journals use it to persist erased events and to rebuild
// them on replay.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"sync"

	"github.com/randalmurphal/circini/pkg/circini/event"
)

// Sentinel errors for catalog operations.
var (
	// ErrUnknownEvent indicates no entry matches the event name or type.
	ErrUnknownEvent = errors.New("unknown event type")

	// ErrDuplicate indicates the name or the Go type is already registered.
	ErrDuplicate = errors.New("event type already registered")

	// ErrIncompatibleVersion indicates data written at a version the entry cannot read.
	ErrIncompatibleVersion = errors.New("incompatible event version")

	// ErrInvalidEntry indicates a malformed registration.
	ErrInvalidEntry = errors.New("invalid catalog entry")
)

// Entry describes one registered event type.
type Entry struct {
	// Name is the stable, process-independent event name (e.g., "key.down").
	Name string

	// Version is the schema version written with new records.
	Version int

	// Compatible lists older versions this entry can still decode.
	Compatible []int

	// Description explains the event's purpose.
	Description string

	// Tags enable categorization.
	Tags []string

	// Type is the Go type tag of the event.
	Type reflect.Type

	decode func([]byte) (*event.AnyEvent, error)
}

// IsCompatibleWith returns true if this entry can decode data at the given version.
func (e *Entry) IsCompatibleWith(version int) bool {
	return version == e.Version || slices.Contains(e.Compatible, version)
}

// EntryOption configures a registration.
type EntryOption func(*Entry)

// WithVersion sets the schema version (default 1).
func WithVersion(v int) EntryOption {
	return func(e *Entry) {
		e.Version = v
	}
}

// WithCompatible lists older versions the entry can still decode.
func WithCompatible(versions ...int) EntryOption {
	return func(e *Entry) {
		e.Compatible = append(e.Compatible, versions...)
	}
}

// WithDescription sets a human-readable description.
func WithDescription(desc string) EntryOption {
	return func(e *Entry) {
		e.Description = desc
	}
}

// WithTags attaches tags to the entry.
func WithTags(tags ...string) EntryOption {
	return func(e *Entry) {
		e.Tags = append(e.Tags, tags...)
	}
}

// Catalog is a thread-safe registry of named event types.
type Catalog struct {
	mu     sync.RWMutex
	byName map[string]*Entry
	byType map[reflect.Type]*Entry
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		byName: make(map[string]*Entry),
		byType: make(map[reflect.Type]*Entry),
	}
}

// Register adds the event type E under name.
//
// E must be a plain event type that round-trips through encoding/json.
// Families are not registered; register each member instead.
func Register[E any](c *Catalog, name string, opts ...EntryOption) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidEntry)
	}

	typ, err := event.Define[E]()
	if err != nil {
		return fmt.Errorf("register %s: %w", name, err)
	}
	tag := reflect.TypeFor[E]()
	if tag == reflect.TypeFor[*event.AnyEvent]() {
		return fmt.Errorf("register %s: %w: the universal event type has no encoding", name, ErrInvalidEntry)
	}

	entry := &Entry{
		Name:    name,
		Version: 1,
		Type:    tag,
		decode: func(data []byte) (*event.AnyEvent, error) {
			var v E
			if err := json.Unmarshal(data, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return typ.UpcastToAny(v), nil
		},
	}
	for _, opt := range opts {
		opt(entry)
	}
	if entry.Version <= 0 {
		return fmt.Errorf("register %s: %w: version must be positive", name, ErrInvalidEntry)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("register %s: %w", name, ErrDuplicate)
	}
	if existing, ok := c.byType[tag]; ok {
		return fmt.Errorf("register %s: %w: %s is registered as %s", name, ErrDuplicate, tag, existing.Name)
	}

	c.byName[name] = entry
	c.byType[tag] = entry
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister[E any](c *Catalog, name string, opts ...EntryOption) {
	if err := Register[E](c, name, opts...); err != nil {
		panic(fmt.Sprintf("failed to register event type: %v", err))
	}
}

// Lookup returns the entry registered under name.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byName[name]
	return e, ok
}

// ByType returns the entry registered for a Go type tag.
func (c *Catalog) ByType(tag reflect.Type) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byType[tag]
	return e, ok
}

// Names returns all registered names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListByTag returns the entries carrying tag, sorted by name.
func (c *Catalog) ListByTag(tag string) []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var entries []*Entry
	for _, e := range c.byName {
		if slices.Contains(e.Tags, tag) {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Len returns the number of registered entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byName)
}

// Encode serializes ev without consuming, copying or disposing it.
// It returns ErrUnknownEvent if ev's type is not registered.
func (c *Catalog) Encode(ev *event.AnyEvent) (*Entry, []byte, error) {
	if !ev.Live() {
		return nil, nil, fmt.Errorf("encode %s: %w", ev.TypeName(), event.ErrConsumed)
	}
	entry, ok := c.ByType(ev.TypeTag())
	if !ok {
		return nil, nil, fmt.Errorf("encode %s: %w", ev.TypeName(), ErrUnknownEvent)
	}
	data, err := ev.MarshalJSON()
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", entry.Name, err)
	}
	return entry, data, nil
}

// Decode rebuilds an erased event from data written under name at version.
func (c *Catalog) Decode(name string, version int, data []byte) (*event.AnyEvent, error) {
	entry, ok := c.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("decode %s: %w", name, ErrUnknownEvent)
	}
	if !entry.IsCompatibleWith(version) {
		return nil, fmt.Errorf("decode %s: %w: entry %d, data %d", name, ErrIncompatibleVersion, entry.Version, version)
	}
	return entry.decode(data)
}
