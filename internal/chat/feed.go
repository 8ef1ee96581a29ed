package chat

import (
	"context"
	"sync"
)

// Feed maintains a live, ordered view of one project's messages. Each
// snapshot delivery fully replaces the previous list. Changing project or
// closing the feed releases the active subscription; a stale subscription
// can never overwrite the current state.
type Feed struct {
	store Store

	mu        sync.Mutex
	projectID string
	gen       uint64
	messages  []MessageView
	unsub     func()
}

func NewFeed(store Store) *Feed {
	return &Feed{store: store}
}

// SetProject switches the feed to projectID. Any prior subscription is torn
// down first. An empty projectID forces an empty feed and no subscription
// is attempted.
func (f *Feed) SetProject(ctx context.Context, projectID string) error {
	f.mu.Lock()
	if projectID == f.projectID && f.unsub != nil {
		f.mu.Unlock()
		return nil
	}
	old := f.unsub
	f.unsub = nil
	f.gen++
	gen := f.gen
	f.projectID = projectID
	f.messages = nil
	f.mu.Unlock()

	// Tear down outside the lock: unsubscribe may wait for an in-flight
	// delivery that needs the lock.
	if old != nil {
		old()
	}

	if projectID == "" {
		return nil
	}

	unsub, err := f.store.Subscribe(ctx, projectID, func(ms []Message) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gen != gen {
			return
		}
		f.messages = ViewsOf(ms)
	})
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.gen != gen {
		// Project changed again while we were subscribing.
		f.mu.Unlock()
		unsub()
		return nil
	}
	f.unsub = unsub
	f.mu.Unlock()
	return nil
}

// Close releases the active subscription. No delivery is applied after
// Close returns.
func (f *Feed) Close() {
	f.mu.Lock()
	old := f.unsub
	f.unsub = nil
	f.gen++
	f.projectID = ""
	f.messages = nil
	f.mu.Unlock()

	if old != nil {
		old()
	}
}

// Snapshot returns the current view, newest first.
func (f *Feed) Snapshot() []MessageView {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]MessageView, len(f.messages))
	copy(out, f.messages)
	return out
}

// ProjectID reports which project the feed currently shows, "" if none.
func (f *Feed) ProjectID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.projectID
}
