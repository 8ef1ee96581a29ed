package chat

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Snapshot delivery: subscribers always receive the complete current result
// set for their project, newest first. Consumers replace prior state, they
// never merge.
type SnapshotFunc func(messages []Message)

// Store is the narrow document-store contract the feed and router depend on.
// One implementation talks to Postgres with Redis change notification
// (postgres.Store); tests use an in-memory one.
type Store interface {
	// Insert persists a message, assigning its ID and server timestamp.
	Insert(ctx context.Context, m Message) (Message, error)

	// Query returns all messages for a project ordered by created_at
	// descending.
	Query(ctx context.Context, projectID string) ([]Message, error)

	// Subscribe delivers an initial snapshot and then a fresh snapshot on
	// every change until the returned unsubscribe function is called.
	// After unsubscribe returns, deliver is never invoked again.
	Subscribe(ctx context.Context, projectID string, deliver SnapshotFunc) (func(), error)
}
