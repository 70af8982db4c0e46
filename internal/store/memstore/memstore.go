package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/2beens/gymtracker/internal/store"

	"github.com/google/uuid"
)

// Store is an in-process DocumentStore. Handlers are called synchronously,
// from the goroutine that made the change, with the store lock released.
type Store struct {
	mutex       sync.Mutex
	collections map[string]map[string]map[string]any
	// insertion order per collection, snapshots follow it
	order       map[string][]string
	versions    map[string]uint64
	subscribers map[string]map[int]*subscriber
	nextSubID   int
	closed      bool

	// NewID is used for generated document ids, overridable in tests
	NewID func() string
}

// subscriber coalesces deliveries: while a handler call is running, newer
// snapshots replace the pending one and are delivered by the running loop.
// A handler that writes to the collection it observes does not deadlock.
type subscriber struct {
	handler store.SnapshotHandler

	mutex    sync.Mutex
	active   bool
	draining bool
	pending  []store.Document
	hasNext  bool
	version  uint64
}

var _ store.DocumentStore = (*Store)(nil)

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
		versions:    make(map[string]uint64),
		subscribers: make(map[string]map[int]*subscriber),
		NewID:       uuid.NewString,
	}
}

func (s *Store) Subscribe(_ context.Context, collectionPath string, handler store.SnapshotHandler) (store.Unsubscribe, error) {
	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return nil, store.ErrClosed
	}
	sub := &subscriber{handler: handler, active: true}
	id := s.nextSubID
	s.nextSubID++
	if s.subscribers[collectionPath] == nil {
		s.subscribers[collectionPath] = make(map[int]*subscriber)
	}
	s.subscribers[collectionPath][id] = sub
	docs := s.snapshotLocked(collectionPath)
	version := s.versions[collectionPath]
	s.mutex.Unlock()

	sub.deliver(docs, version)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mutex.Lock()
			delete(s.subscribers[collectionPath], id)
			s.mutex.Unlock()

			sub.mutex.Lock()
			sub.active = false
			sub.hasNext = false
			sub.pending = nil
			sub.mutex.Unlock()
		})
	}, nil
}

func (s *Store) Create(_ context.Context, collectionPath string, fields map[string]any) (string, error) {
	id := s.NewID()

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return "", store.ErrClosed
	}
	s.putLocked(collectionPath, id, store.MergeFields(nil, fields))
	subs, docs, version := s.changedLocked(collectionPath)
	s.mutex.Unlock()

	notify(subs, docs, version)
	return id, nil
}

func (s *Store) UpsertMerge(_ context.Context, docPath string, fields map[string]any) error {
	collectionPath, docID, err := store.SplitDocPath(docPath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return store.ErrClosed
	}
	current := s.collections[collectionPath][docID]
	s.putLocked(collectionPath, docID, store.MergeFields(current, fields))
	subs, docs, version := s.changedLocked(collectionPath)
	s.mutex.Unlock()

	notify(subs, docs, version)
	return nil
}

func (s *Store) Delete(_ context.Context, docPath string) error {
	collectionPath, docID, err := store.SplitDocPath(docPath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	if s.closed {
		s.mutex.Unlock()
		return store.ErrClosed
	}
	if _, ok := s.collections[collectionPath][docID]; !ok {
		s.mutex.Unlock()
		return store.ErrNotFound
	}
	delete(s.collections[collectionPath], docID)
	order := s.order[collectionPath]
	for i, id := range order {
		if id == docID {
			s.order[collectionPath] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	subs, docs, version := s.changedLocked(collectionPath)
	s.mutex.Unlock()

	notify(subs, docs, version)
	return nil
}

// Close drops all subscribers, later calls fail with store.ErrClosed.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.closed = true
	s.subscribers = make(map[string]map[int]*subscriber)
	return nil
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collectionPath string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.collections[collectionPath])
}

func (s *Store) putLocked(collectionPath, docID string, fields map[string]any) {
	if s.collections[collectionPath] == nil {
		s.collections[collectionPath] = make(map[string]map[string]any)
	}
	if _, exists := s.collections[collectionPath][docID]; !exists {
		s.order[collectionPath] = append(s.order[collectionPath], docID)
	}
	s.collections[collectionPath][docID] = fields
}

func (s *Store) changedLocked(collectionPath string) ([]*subscriber, []store.Document, uint64) {
	s.versions[collectionPath]++
	version := s.versions[collectionPath]

	subsMap := s.subscribers[collectionPath]
	if len(subsMap) == 0 {
		return nil, nil, version
	}
	ids := make([]int, 0, len(subsMap))
	for id := range subsMap {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]*subscriber, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, subsMap[id])
	}
	return subs, s.snapshotLocked(collectionPath), version
}

func (s *Store) snapshotLocked(collectionPath string) []store.Document {
	docs := make([]store.Document, 0, len(s.order[collectionPath]))
	for _, id := range s.order[collectionPath] {
		docs = append(docs, store.Document{
			ID:     id,
			Fields: store.MergeFields(nil, s.collections[collectionPath][id]),
		})
	}
	return docs
}

func notify(subs []*subscriber, docs []store.Document, version uint64) {
	for _, sub := range subs {
		sub.deliver(docs, version)
	}
}

func (sub *subscriber) deliver(docs []store.Document, version uint64) {
	sub.mutex.Lock()
	if !sub.active || version < sub.version {
		sub.mutex.Unlock()
		return
	}
	sub.version = version
	sub.pending = docs
	sub.hasNext = true
	if sub.draining {
		sub.mutex.Unlock()
		return
	}
	sub.draining = true

	for sub.hasNext && sub.active {
		next := sub.pending
		sub.pending = nil
		sub.hasNext = false
		sub.mutex.Unlock()

		// every handler gets its own copy of the document list
		sub.handler(append([]store.Document{}, next...), nil)

		sub.mutex.Lock()
	}
	sub.draining = false
	sub.mutex.Unlock()
}
