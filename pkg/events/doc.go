/*
Package events provides a non-blocking broker for task lifecycle events.

The scheduler publishes an event for every observable task state change:
submitted, queued, started, completed, retrying, failed, cancelled and
skipped. Observers (a UI event stream, an audit log) subscribe with a
buffered channel.

Delivery is best-effort: a subscriber whose buffer is full loses the
event rather than back-pressuring the scheduler. Consumers that need a
complete record should read task state from the store, not reconstruct
it from events.

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for event := range sub {
		fmt.Printf("%s %s\n", event.Type, event.TaskID)
	}
*/
package events
