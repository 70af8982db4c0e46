package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

//go:generate mockgen -source=$GOFILE -destination=mocks/store_mock.go -package=mocks

var (
	ErrNotFound = errors.New("document not found")
	ErrClosed   = errors.New("store closed")
)

// Document is a stored document: its id plus loosely typed fields.
type Document struct {
	ID     string
	Fields map[string]any
}

// SnapshotHandler receives the full, current contents of a collection. It is
// called once right after subscribing, then on every change. A non-nil err means
// the subscription broke, docs is nil then and no more calls follow.
type SnapshotHandler func(docs []Document, err error)

// Unsubscribe stops a subscription. It is safe to call more than once, and no
// handler call starts after it returns. It does not wait for a running call.
type Unsubscribe func()

// DocumentStore is a push based document store, organized in collections
// addressed by slash separated paths (users/{id}/workouts).
type DocumentStore interface {
	Subscribe(ctx context.Context, collectionPath string, handler SnapshotHandler) (Unsubscribe, error)
	// Create adds a new document and returns its generated id.
	Create(ctx context.Context, collectionPath string, fields map[string]any) (string, error)
	// UpsertMerge merges the given top level fields into the document,
	// creating it if missing. Other fields are left untouched.
	UpsertMerge(ctx context.Context, docPath string, fields map[string]any) error
	Delete(ctx context.Context, docPath string) error
	Close() error
}

// SplitDocPath splits "users/u1/goals/g1" into "users/u1/goals" and "g1".
func SplitDocPath(docPath string) (collectionPath, docID string, err error) {
	idx := strings.LastIndex(docPath, "/")
	if idx <= 0 || idx == len(docPath)-1 {
		return "", "", fmt.Errorf("invalid document path %q", docPath)
	}
	return docPath[:idx], docPath[idx+1:], nil
}

// MergeFields returns a copy of current with the top level fields of update applied.
func MergeFields(current, update map[string]any) map[string]any {
	merged := make(map[string]any, len(current)+len(update))
	for k, v := range current {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}
