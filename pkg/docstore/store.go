// Package docstore defines the document persistence boundary: named
// collections of semi-structured records with merge-upsert writes, equality
// queries, and live push subscriptions delivered over conflated streams.
package docstore

import (
	"context"

	"bookshelf/pkg/stream"
)

// Document holds the fields of a single stored record.
type Document map[string]any

// Snapshot is the value of a single document at a point in time. Exists is
// false when the document is missing or has been deleted.
type Snapshot struct {
	Exists bool
	Data   Document
}

// Store defines durable storage and live-query primitives over named
// collections, independent of domain shape.
type Store interface {
	// CreateOrMerge writes fields into the document identified by id,
	// allocating an id when none is given. For an existing document only
	// the supplied fields are touched. Returns the document id.
	CreateOrMerge(ctx context.Context, collection, id string, fields Document) (string, error)

	// SubscribeCollection emits the full current result set of documents
	// whose field equals value, once now and again after every matching
	// change. The stream is conflated and terminates abnormally on backend
	// error.
	SubscribeCollection(ctx context.Context, collection, field, value string) *stream.Subscription[[]Document]

	// SubscribeDocument emits the live value of a single document. An
	// absent document is emitted as a Snapshot with Exists false.
	SubscribeDocument(ctx context.Context, collection, id string) *stream.Subscription[Snapshot]

	// Delete removes the document. Deleting a missing document succeeds.
	Delete(ctx context.Context, collection, id string) error
}

// Clone deep-copies a document so callers cannot alias stored state.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Document:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
