package docstore

import "context"

// Event announces that a document in a collection changed (written or
// deleted). Events carry no payload; subscribers re-query the store.
type Event struct {
	Collection string
	ID         string
}

// Notifier is the change feed that fans document mutations out to live
// subscribers, possibly across processes.
type Notifier interface {
	// Publish announces a change.
	Publish(ctx context.Context, ev Event) error

	// Subscribe returns a channel of events for one collection and a stop
	// function that detaches the listener and closes the channel.
	Subscribe(ctx context.Context, collection string) (<-chan Event, func(), error)
}
