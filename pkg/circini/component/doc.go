// Package component dispatches erased events to statically typed components.
//
// # Components
//
// A Component[E] handles events of one type E. The type may be a single
// event type, an event family or the universal event type:
//
//	type Keyboard struct{ pressed []int }
//
//	func (k *Keyboard) On(ctx context.Context, ev KeyDown) error {
//	    k.pressed = append(k.pressed, ev.Key)
//	    return nil
//	}
//
// # Containers
//
// A Container holds components in registration order and broadcasts each
// event to every component whose type accepts it:
//
//	ui := component.NewContainer(component.WithName("ui"))
//	component.Attach(ui, event.Of[KeyDown](), &Keyboard{})
//	component.Attach(ui, keyEvents, component.Func[KeyEvent](logKeys))
//
//	err := component.Dispatch(ctx, ui, event.Of[KeyDown](), KeyDown{Key: 17})
//
// Containers are components of event.AnyEvent, so they nest:
//
//	root := component.NewContainer(component.WithName("root"))
//	component.AttachReceiver(root, ui)
//
// # Ownership
//
// The container owns the event it is given. Every accepting component but
// the last receives its own clone, and the last receives the original, so a
// single interested component never causes a copy. Payloads that cannot be
// cloned (see event.Cloner) may reach only one component. Components that
// do not accept an event never see it, and their state is untouched. A
// component of *event.AnyEvent must consume the event before On returns;
// whatever it leaves is released by its wrapper.
//
// Closing a container closes its components. Components implementing
// io.Closer or event.Disposer are released exactly once.
package component
