package redisstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/2beens/gymtracker/internal/store"
	"github.com/2beens/gymtracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	docsKeyPrefix      = "gymtracker||docs||"
	changesChannelPrfx = "gymtracker||changes||"
)

// Store keeps every collection in one redis hash (doc id -> JSON fields) and
// announces changes on a pub/sub channel per collection. Subscribers reload
// the whole hash on every announcement.
type Store struct {
	redisClient *redis.Client

	mutex   sync.Mutex
	cancels map[int]context.CancelFunc
	nextID  int
	wg      sync.WaitGroup

	// NewID is used for generated document ids, overridable in tests
	NewID func() string
}

var _ store.DocumentStore = (*Store)(nil)

func New(redisClient *redis.Client) *Store {
	return &Store{
		redisClient: redisClient,
		cancels:     make(map[int]context.CancelFunc),
		NewID:       uuid.NewString,
	}
}

func docsKey(collectionPath string) string {
	return docsKeyPrefix + collectionPath
}

func changesChannel(collectionPath string) string {
	return changesChannelPrfx + collectionPath
}

func (s *Store) Subscribe(ctx context.Context, collectionPath string, handler store.SnapshotHandler) (_ store.Unsubscribe, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisstore.subscribe")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collectionPath))

	pubsub := s.redisClient.Subscribe(ctx, changesChannel(collectionPath))
	// wait for the subscription to be confirmed, so no change between
	// the first load and the subscription can be missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", collectionPath, err)
	}

	docs, err := s.load(ctx, collectionPath)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	subCtx, cancel := context.WithCancel(context.Background())
	s.mutex.Lock()
	id := s.nextID
	s.nextID++
	s.cancels[id] = cancel
	s.mutex.Unlock()

	var stopped atomic.Bool
	deliver := func(docs []store.Document, err error) {
		if stopped.Load() {
			return
		}
		handler(docs, err)
	}

	deliver(docs, nil)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := pubsub.Close(); err != nil {
				log.Debugf("redisstore: close pubsub %s: %s", collectionPath, err)
			}
		}()

		messages := pubsub.Channel()
		for {
			select {
			case <-subCtx.Done():
				return
			case _, ok := <-messages:
				if !ok {
					deliver(nil, fmt.Errorf("subscription %s: %w", collectionPath, store.ErrClosed))
					return
				}
				docs, err := s.load(subCtx, collectionPath)
				if err != nil {
					if errors.Is(err, context.Canceled) {
						return
					}
					log.Errorf("redisstore: reload %s: %s", collectionPath, err)
					continue
				}
				deliver(docs, nil)
			}
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
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisstore.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("collection", collectionPath))

	id := s.NewID()
	if err := s.put(ctx, collectionPath, id, fields); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpsertMerge(ctx context.Context, docPath string, fields map[string]any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisstore.upsert-merge")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("doc", docPath))

	collectionPath, docID, err := store.SplitDocPath(docPath)
	if err != nil {
		return err
	}

	var current map[string]any
	raw, err := s.redisClient.HGet(ctx, docsKey(collectionPath), docID).Result()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return fmt.Errorf("get %s: %w", docPath, err)
	default:
		if current, err = decodeFields(raw); err != nil {
			return fmt.Errorf("decode %s: %w", docPath, err)
		}
	}

	return s.put(ctx, collectionPath, docID, store.MergeFields(current, fields))
}

func (s *Store) Delete(ctx context.Context, docPath string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "redisstore.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("doc", docPath))

	collectionPath, docID, err := store.SplitDocPath(docPath)
	if err != nil {
		return err
	}

	deleted, err := s.redisClient.HDel(ctx, docsKey(collectionPath), docID).Result()
	if err != nil {
		return fmt.Errorf("delete %s: %w", docPath, err)
	}
	if deleted == 0 {
		return store.ErrNotFound
	}

	return s.announce(ctx, collectionPath, docID)
}

// Close stops all subscriptions and waits for their goroutines.
// The redis client is owned by the caller and stays open.
func (s *Store) Close() error {
	s.mutex.Lock()
	for id, cancel := range s.cancels {
		cancel()
		delete(s.cancels, id)
	}
	s.mutex.Unlock()

	s.wg.Wait()
	return nil
}

func (s *Store) put(ctx context.Context, collectionPath, docID string, fields map[string]any) error {
	if fields == nil {
		fields = map[string]any{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collectionPath, docID, err)
	}
	if err := s.redisClient.HSet(ctx, docsKey(collectionPath), docID, string(encoded)).Err(); err != nil {
		return fmt.Errorf("save %s/%s: %w", collectionPath, docID, err)
	}
	return s.announce(ctx, collectionPath, docID)
}

func (s *Store) announce(ctx context.Context, collectionPath, docID string) error {
	if err := s.redisClient.Publish(ctx, changesChannel(collectionPath), docID).Err(); err != nil {
		return fmt.Errorf("publish change %s/%s: %w", collectionPath, docID, err)
	}
	return nil
}

func (s *Store) load(ctx context.Context, collectionPath string) ([]store.Document, error) {
	raw, err := s.redisClient.HGetAll(ctx, docsKey(collectionPath)).Result()
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", collectionPath, err)
	}

	docs := make([]store.Document, 0, len(raw))
	for id, encoded := range raw {
		fields, err := decodeFields(encoded)
		if err != nil {
			log.Errorf("redisstore: skip doc %s/%s: %s", collectionPath, id, err)
			continue
		}
		docs = append(docs, store.Document{ID: id, Fields: fields})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})

	return docs, nil
}

// decodeFields keeps numbers as json.Number, so integers survive as they were written.
func decodeFields(encoded string) (map[string]any, error) {
	decoder := json.NewDecoder(bytes.NewBufferString(encoded))
	decoder.UseNumber()
	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}
