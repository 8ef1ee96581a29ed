package chat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedMessage(t *testing.T, store *memStore, projectID, text string) Message {
	t.Helper()
	m, err := store.Insert(context.Background(), Message{
		ProjectID: projectID,
		Text:      text,
		User:      UserRef{UID: "u1", Email: "jane@example.com"},
	})
	require.NoError(t, err)
	return m
}

func TestFeed_NoProjectMeansNoSubscription(t *testing.T) {
	store := newMemStore()
	seedMessage(t, store, "p1", "hello")

	feed := NewFeed(store)
	require.NoError(t, feed.SetProject(context.Background(), ""))

	assert.Empty(t, feed.Snapshot())
	assert.Equal(t, 0, store.subscribeCalls, "no subscription may be attempted without a project")
}

func TestFeed_SnapshotNewestFirst(t *testing.T) {
	store := newMemStore()
	m1 := seedMessage(t, store, "p1", "first")
	m2 := seedMessage(t, store, "p1", "second")

	feed := NewFeed(store)
	require.NoError(t, feed.SetProject(context.Background(), "p1"))

	views := feed.Snapshot()
	require.Len(t, views, 2)
	assert.Equal(t, m2.ID, views[0].ID, "newest message comes first")
	assert.Equal(t, m1.ID, views[1].ID)

	m3 := seedMessage(t, store, "p1", "third")
	views = feed.Snapshot()
	require.Len(t, views, 3)
	assert.Equal(t, m3.ID, views[0].ID)
}

func TestFeed_SnapshotReplacesPriorState(t *testing.T) {
	store := newMemStore()
	feed := NewFeed(store)
	require.NoError(t, feed.SetProject(context.Background(), "p1"))

	seedMessage(t, store, "p1", "one")
	seedMessage(t, store, "p1", "two")

	// Each delivery replaces the list wholesale; nothing is duplicated by
	// incremental merging.
	views := feed.Snapshot()
	require.Len(t, views, 2)
}

func TestFeed_ScopedToProject(t *testing.T) {
	store := newMemStore()
	seedMessage(t, store, "p1", "mine")
	seedMessage(t, store, "p2", "other")

	feed := NewFeed(store)
	require.NoError(t, feed.SetProject(context.Background(), "p1"))

	views := feed.Snapshot()
	require.Len(t, views, 1)
	assert.Equal(t, "mine", views[0].Text)
}

func TestFeed_ProjectChangeTearsDownOldSubscription(t *testing.T) {
	store := newMemStore()
	feed := NewFeed(store)

	require.NoError(t, feed.SetProject(context.Background(), "p1"))
	require.NoError(t, feed.SetProject(context.Background(), "p2"))
	assert.Equal(t, 1, store.activeSubs(), "old subscription must be released")

	// A write to the abandoned project must not reach the feed.
	seedMessage(t, store, "p1", "stale")
	assert.Empty(t, feed.Snapshot())

	seedMessage(t, store, "p2", "fresh")
	views := feed.Snapshot()
	require.Len(t, views, 1)
	assert.Equal(t, "fresh", views[0].Text)
}

func TestFeed_CloseStopsDeliveries(t *testing.T) {
	store := newMemStore()
	feed := NewFeed(store)
	require.NoError(t, feed.SetProject(context.Background(), "p1"))

	feed.Close()
	assert.Equal(t, 0, store.activeSubs())

	seedMessage(t, store, "p1", "late")
	assert.Empty(t, feed.Snapshot(), "no update may be applied after Close")
}

func TestFeed_SameProjectDoesNotResubscribe(t *testing.T) {
	store := newMemStore()
	feed := NewFeed(store)

	require.NoError(t, feed.SetProject(context.Background(), "p1"))
	require.NoError(t, feed.SetProject(context.Background(), "p1"))
	assert.Equal(t, 1, store.subscribeCalls)
}
