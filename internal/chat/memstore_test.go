package chat

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// memStore is an in-memory Store with a strictly increasing fake server
// clock, so ordering tests do not depend on the wall clock.
type memStore struct {
	mu       sync.Mutex
	now      time.Time
	messages []Message
	subs     map[int]*memSub
	nextSub  int

	insertCalls    int
	subscribeCalls int
	failInsert     error
	failSubscribe  error
}

type memSub struct {
	projectID string
	deliver   SnapshotFunc
	active    bool
}

func newMemStore() *memStore {
	return &memStore{
		now:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		subs: map[int]*memSub{},
	}
}

func (s *memStore) Insert(_ context.Context, m Message) (Message, error) {
	s.mu.Lock()
	s.insertCalls++
	if s.failInsert != nil {
		err := s.failInsert
		s.mu.Unlock()
		return Message{}, err
	}

	s.now = s.now.Add(time.Second)
	m.ID = fmt.Sprintf("m%d", len(s.messages)+1)
	m.CreatedAt = s.now
	s.messages = append(s.messages, m)

	type delivery struct {
		fn SnapshotFunc
		ms []Message
	}
	var pending []delivery
	for _, sub := range s.subs {
		if sub.active && sub.projectID == m.ProjectID {
			pending = append(pending, delivery{sub.deliver, s.snapshotLocked(sub.projectID)})
		}
	}
	s.mu.Unlock()

	for _, d := range pending {
		d.fn(d.ms)
	}
	return m, nil
}

func (s *memStore) Query(_ context.Context, projectID string) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(projectID), nil
}

func (s *memStore) Subscribe(_ context.Context, projectID string, deliver SnapshotFunc) (func(), error) {
	s.mu.Lock()
	s.subscribeCalls++
	if s.failSubscribe != nil {
		err := s.failSubscribe
		s.mu.Unlock()
		return nil, err
	}
	id := s.nextSub
	s.nextSub++
	sub := &memSub{projectID: projectID, deliver: deliver, active: true}
	s.subs[id] = sub
	initial := s.snapshotLocked(projectID)
	s.mu.Unlock()

	deliver(initial)

	return func() {
		s.mu.Lock()
		sub.active = false
		delete(s.subs, id)
		s.mu.Unlock()
	}, nil
}

func (s *memStore) snapshotLocked(projectID string) []Message {
	out := make([]Message, 0, len(s.messages))
	for _, m := range s.messages {
		if m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *memStore) activeSubs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}
