package catalog_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/circini/pkg/circini/catalog"
	"github.com/randalmurphal/circini/pkg/circini/event"
)

type KeyDown struct {
	Key int `json:"key"`
}

type MouseMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type KeyEvent interface{ isKeyEvent() }

func (KeyDown) isKeyEvent() {}

// frame counts disposals through a shared counter.
type frame struct {
	Seq      int `json:"seq"`
	disposed *int
}

func (f frame) Dispose() {
	if f.disposed != nil {
		*f.disposed++
	}
}

func newCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c := catalog.New()
	require.NoError(t, catalog.Register[KeyDown](c, "key.down",
		catalog.WithDescription("a key was pressed"),
		catalog.WithTags("input", "keyboard"),
	))
	require.NoError(t, catalog.Register[MouseMove](c, "mouse.move",
		catalog.WithVersion(2),
		catalog.WithCompatible(1),
		catalog.WithTags("input"),
	))
	return c
}

func TestRegisterAndLookup(t *testing.T) {
	c := newCatalog(t)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"key.down", "mouse.move"}, c.Names())

	e, ok := c.Lookup("key.down")
	require.True(t, ok)
	assert.Equal(t, 1, e.Version)
	assert.Equal(t, "a key was pressed", e.Description)
	assert.Equal(t, reflect.TypeFor[KeyDown](), e.Type)

	byType, ok := c.ByType(reflect.TypeFor[MouseMove]())
	require.True(t, ok)
	assert.Equal(t, "mouse.move", byType.Name)

	_, ok = c.Lookup("nope")
	assert.False(t, ok)
}

func TestRegisterRejects(t *testing.T) {
	c := newCatalog(t)

	tests := []struct {
		name string
		err  error
		fn   func() error
	}{
		{"duplicate name", catalog.ErrDuplicate, func() error { return catalog.Register[frame](c, "key.down") }},
		{"duplicate type", catalog.ErrDuplicate, func() error { return catalog.Register[KeyDown](c, "key.pressed") }},
		{"empty name", catalog.ErrInvalidEntry, func() error { return catalog.Register[frame](c, "") }},
		{"bad version", catalog.ErrInvalidEntry, func() error { return catalog.Register[frame](c, "frame", catalog.WithVersion(0)) }},
		{"universal", catalog.ErrInvalidEntry, func() error { return catalog.Register[*event.AnyEvent](c, "any") }},
		{"interface", event.ErrFamilyShape, func() error { return catalog.Register[KeyEvent](c, "key") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.fn(), tt.err)
		})
	}
	assert.Equal(t, 2, c.Len())
}

func TestMustRegisterPanics(t *testing.T) {
	c := newCatalog(t)
	assert.Panics(t, func() { catalog.MustRegister[KeyDown](c, "key.down") })
}

func TestListByTag(t *testing.T) {
	c := newCatalog(t)

	input := c.ListByTag("input")
	require.Len(t, input, 2)
	assert.Equal(t, "key.down", input[0].Name)
	assert.Equal(t, "mouse.move", input[1].Name)

	assert.Len(t, c.ListByTag("keyboard"), 1)
	assert.Empty(t, c.ListByTag("audio"))
}

func TestEncodeDecode(t *testing.T) {
	c := newCatalog(t)

	ev := event.Upcast(MouseMove{X: 3, Y: 4})
	entry, data, err := c.Encode(ev)
	require.NoError(t, err)
	assert.Equal(t, "mouse.move", entry.Name)
	assert.JSONEq(t, `{"x":3,"y":4}`, string(data))
	assert.True(t, ev.Live(), "encoding does not consume the event")

	back, err := c.Decode(entry.Name, 1, data)
	require.NoError(t, err)
	got, ok := event.Of[MouseMove]().FilterAny(back)
	require.True(t, ok)
	assert.Equal(t, MouseMove{X: 3, Y: 4}, got)

	ev.Release()
}

func TestEncodeLeavesPayloadAlone(t *testing.T) {
	c := catalog.New()
	require.NoError(t, catalog.Register[frame](c, "frame"))

	disposed := 0
	ev := event.Upcast(frame{Seq: 9, disposed: &disposed})
	_, data, err := c.Encode(ev)
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":9}`, string(data))
	assert.Equal(t, 0, disposed, "encoding neither copies nor disposes")

	ev.Release()
	assert.Equal(t, 1, disposed)
}

// socket is a pointer event that owns a resource.
type socket struct {
	Addr     string `json:"addr"`
	disposed int
}

func (s *socket) Dispose() { s.disposed++ }

func TestEncodePointerPayload(t *testing.T) {
	c := catalog.New()
	require.NoError(t, catalog.Register[*socket](c, "socket"))

	s := &socket{Addr: "localhost:80"}
	ev := event.Upcast(s)
	entry, data, err := c.Encode(ev)
	require.NoError(t, err)
	assert.Equal(t, "socket", entry.Name)
	assert.JSONEq(t, `{"addr":"localhost:80"}`, string(data))
	assert.Equal(t, 0, s.disposed)
	assert.True(t, ev.Live())

	got, ok := event.Of[*socket]().FilterAny(ev)
	require.True(t, ok)
	assert.Same(t, s, got)

	back, err := c.Decode("socket", 1, data)
	require.NoError(t, err)
	decoded, ok := event.Of[*socket]().FilterAny(back)
	require.True(t, ok)
	assert.NotSame(t, s, decoded)
	assert.Equal(t, "localhost:80", decoded.Addr)
}

func TestEncodeErrors(t *testing.T) {
	c := newCatalog(t)

	unknown := event.Upcast(frame{})
	_, _, err := c.Encode(unknown)
	assert.ErrorIs(t, err, catalog.ErrUnknownEvent)
	assert.True(t, unknown.Live())

	consumed := event.Upcast(KeyDown{})
	consumed.Release()
	_, _, err = c.Encode(consumed)
	assert.ErrorIs(t, err, event.ErrConsumed)
}

func TestDecodeErrors(t *testing.T) {
	c := newCatalog(t)

	_, err := c.Decode("nope", 1, []byte(`{}`))
	assert.ErrorIs(t, err, catalog.ErrUnknownEvent)

	_, err = c.Decode("key.down", 2, []byte(`{}`))
	assert.ErrorIs(t, err, catalog.ErrIncompatibleVersion)

	_, err = c.Decode("key.down", 1, []byte(`{`))
	assert.Error(t, err)
}
