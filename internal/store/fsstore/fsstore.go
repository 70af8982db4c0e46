package fsstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	"cloud.google.com/go/firestore"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Store is a DocumentStore on top of Cloud Firestore, using its realtime
// query snapshots for subscriptions.
type Store struct {
	client *firestore.Client

	mutex   sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
	wg      sync.WaitGroup
}

var _ store.DocumentStore = (*Store)(nil)

// NewClient connects to the project. An empty credentialsFile falls back to
// application default credentials (GOOGLE_APPLICATION_CREDENTIALS or the metadata server).
func NewClient(ctx context.Context, projectID, credentialsFile string) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("new firestore client: %w", err)
	}
	return client, nil
}

func New(client *firestore.Client) *Store {
	return &Store{
		client:  client,
		cancels: make(map[int]context.CancelFunc),
	}
}

func (s *Store) Subscribe(ctx context.Context, collectionPath string, handler store.SnapshotHandler) (store.Unsubscribe, error) {
	_, span := tracing.GlobalTracer.Start(ctx, "firestore.subscribe")
	defer span.End()
	span.SetAttributes(attribute.String("collection", collectionPath))

	collection := s.client.Collection(collectionPath)
	if collection == nil {
		return nil, fmt.Errorf("invalid collection path %q", collectionPath)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	s.mutex.Lock()
	id := s.nextID
	s.nextID++
	s.cancels[id] = cancel
	s.mutex.Unlock()

	var stopped atomic.Bool
	snapshots := collection.Snapshots(subCtx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer snapshots.Stop()

		for {
			snap, err := snapshots.Next()
			if err != nil {
				if subCtx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					return
				}
				if !stopped.Load() {
					handler(nil, fmt.Errorf("snapshots %s: %w", collectionPath, err))
				}
				return
			}

			docSnaps, err := snap.Documents.GetAll()
			if err != nil {
				log.Errorf("firestore: read snapshot %s: %s", collectionPath, err)
				continue
			}
			docs := make([]store.Document, 0, len(docSnaps))
			for _, ds := range docSnaps {
				docs = append(docs, store.Document{
					ID:     ds.Ref.ID,
					Fields: ds.Data(),
				})
			}
			if stopped.Load() {
				return
			}
			handler(docs, nil)
		}
	}()

	return func() {
		stopped.Store(true)
		s.mutex.Lock()
		defer s.mutex.Unlock()
		if cancel, ok := s.cancels[id]; ok {
			cancel()
			delete(s.cancels, id)
		}
	}, nil
}

func (s *Store) Create(ctx context.Context, collectionPath string, fields map[string]any) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "firestore.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collectionPath))

	collection := s.client.Collection(collectionPath)
	if collection == nil {
		return "", fmt.Errorf("invalid collection path %q", collectionPath)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	ref, _, err := collection.Add(ctx, fields)
	if err != nil {
		return "", fmt.Errorf("add to %s: %w", collectionPath, err)
	}
	return ref.ID, nil
}

func (s *Store) UpsertMerge(ctx context.Context, docPath string, fields map[string]any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "firestore.upsert-merge")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("doc", docPath))

	doc := s.client.Doc(docPath)
	if doc == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if len(fields) == 0 {
		// nothing to merge, only make sure the document exists
		_, err = doc.Set(ctx, map[string]any{}, firestore.MergeAll)
	} else {
		_, err = doc.Set(ctx, fields, firestore.Merge(topLevelPaths(fields)...))
	}
	if err != nil {
		return fmt.Errorf("merge %s: %w", docPath, err)
	}
	return nil
}

// topLevelPaths lists the keys of fields as single element field paths, so a
// nested map value replaces the stored one instead of being merged into it.
func topLevelPaths(fields map[string]any) []firestore.FieldPath {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	paths := make([]firestore.FieldPath, 0, len(keys))
	for _, k := range keys {
		paths = append(paths, firestore.FieldPath{k})
	}
	return paths
}

func (s *Store) Delete(ctx context.Context, docPath string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "firestore.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("doc", docPath))

	doc := s.client.Doc(docPath)
	if doc == nil {
		return fmt.Errorf("invalid document path %q", docPath)
	}
	if _, err := doc.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return store.ErrNotFound
		}
		return fmt.Errorf("delete %s: %w", docPath, err)
	}
	return nil
}

// Close stops all subscriptions and closes the client.
func (s *Store) Close() error {
	s.mutex.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mutex.Unlock()

	s.wg.Wait()
	return s.client.Close()
}
