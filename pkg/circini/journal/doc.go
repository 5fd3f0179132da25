/*
Package journal records erased events and replays them later.

A Recorder is a component of the universal event type. Attached to a
container, it receives a clone of every event and appends it to a Store
under one stream, encoded through a catalog:

	cat := catalog.New()
	catalog.MustRegister[KeyDown](cat, "key.down")

	store, err := journal.NewSQLiteStore("./events.db")
	if err != nil {
		return err
	}
	defer store.Close()

	ui := component.NewContainer(component.WithName("ui"))
	component.AttachReceiver(ui, journal.NewRecorder(store, cat, "session-1"))

Replay reads a stream back in sequence order and feeds the decoded events
to any component, usually a fresh container:

	last, err := journal.Replay(ctx, store, cat, "session-1", restored)

# Stores

MemoryStore is for tests. SQLiteStore uses the pure Go modernc.org/sqlite
driver in WAL mode.
*/
package journal
