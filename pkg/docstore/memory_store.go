package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"bookshelf/pkg/stream"
)

// MemoryStore keeps documents in-process. It implements the full Store
// contract including live subscriptions, which makes it the backend of
// choice for tests and single-process tools.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	docWatchers map[int]*docWatcher
	colWatchers map[int]*colWatcher
	nextWatcher int
}

type docWatcher struct {
	collection string
	id         string
	out        *stream.Conflated[Snapshot]
}

type colWatcher struct {
	collection string
	field      string
	value      string
	out        *stream.Conflated[[]Document]
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Document),
		docWatchers: make(map[int]*docWatcher),
		colWatchers: make(map[int]*colWatcher),
	}
}

// CreateOrMerge writes fields into a document, allocating an id if needed.
func (m *MemoryStore) CreateOrMerge(_ context.Context, collection, id string, fields Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	col, ok := m.collections[collection]
	if !ok {
		col = make(map[string]Document)
		m.collections[collection] = col
	}
	doc, ok := col[id]
	if !ok {
		doc = make(Document, len(fields))
	}
	for k, v := range fields.Clone() {
		doc[k] = v
	}
	col[id] = doc
	m.notifyLocked(collection, id)
	return id, nil
}

// Delete removes a document. Missing documents are ignored.
func (m *MemoryStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if col, ok := m.collections[collection]; ok {
		delete(col, id)
	}
	m.notifyLocked(collection, id)
	return nil
}

// SubscribeDocument emits the live value of one document, starting with its
// current state.
func (m *MemoryStore) SubscribeDocument(_ context.Context, collection, id string) *stream.Subscription[Snapshot] {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := stream.NewConflated[Snapshot]()
	w := &docWatcher{collection: collection, id: id, out: out}
	key := m.nextWatcher
	m.nextWatcher++
	m.docWatchers[key] = w

	out.Send(m.snapshotLocked(collection, id))
	return stream.NewSubscription(out, func() {
		m.mu.Lock()
		delete(m.docWatchers, key)
		m.mu.Unlock()
	})
}

// SubscribeCollection emits the full result set for an equality filter,
// starting with the current matches.
func (m *MemoryStore) SubscribeCollection(_ context.Context, collection, field, value string) *stream.Subscription[[]Document] {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := stream.NewConflated[[]Document]()
	w := &colWatcher{collection: collection, field: field, value: value, out: out}
	key := m.nextWatcher
	m.nextWatcher++
	m.colWatchers[key] = w

	out.Send(m.queryLocked(collection, field, value))
	return stream.NewSubscription(out, func() {
		m.mu.Lock()
		delete(m.colWatchers, key)
		m.mu.Unlock()
	})
}

func (m *MemoryStore) notifyLocked(collection, id string) {
	for _, w := range m.docWatchers {
		if w.collection == collection && w.id == id {
			w.out.Send(m.snapshotLocked(collection, id))
		}
	}
	for _, w := range m.colWatchers {
		if w.collection == collection {
			w.out.Send(m.queryLocked(collection, w.field, w.value))
		}
	}
}

func (m *MemoryStore) snapshotLocked(collection, id string) Snapshot {
	if doc, ok := m.collections[collection][id]; ok {
		return Snapshot{Exists: true, Data: doc.Clone()}
	}
	return Snapshot{}
}

func (m *MemoryStore) queryLocked(collection, field, value string) []Document {
	col := m.collections[collection]
	ids := make([]string, 0, len(col))
	for id, doc := range col {
		if s, ok := doc[field].(string); ok && s == value {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	res := make([]Document, 0, len(ids))
	for _, id := range ids {
		res = append(res, col[id].Clone())
	}
	return res
}
