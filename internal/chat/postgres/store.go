package postgres

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/k1w1proplus/chat-backend/internal/chat"
)

const (
	// Pub/Sub channel for message changes: chat:events:{project_id}
	eventChannelPrefix = "chat:events:"

	// Snapshot size cap. The feed presents newest first, so the cap trims
	// the oldest messages.
	snapshotLimit = 200
)

// Store persists messages in Postgres and signals changes over a Redis
// Pub/Sub channel per project. Timestamps are assigned by Postgres at
// insert time, which makes them the single ordering authority across
// clients.
type Store struct {
	db  *pgxpool.Pool
	rdb *redis.Client
}

func NewStore(db *pgxpool.Pool, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

func eventChannel(projectID string) string {
	return eventChannelPrefix + projectID
}

func (s *Store) Insert(ctx context.Context, m chat.Message) (chat.Message, error) {
	if m.ProjectID == "" {
		return chat.Message{}, fmt.Errorf("project_id required")
	}
	m.ID = uuid.NewString()

	const q = `
insert into chat_messages (id, project_id, text, image_url, user_uid, user_email, user_display_name)
values ($1, $2, $3, nullif($4,''), $5, $6, $7)
returning created_at;
`
	err := s.db.QueryRow(ctx, q,
		m.ID, m.ProjectID, m.Text, m.ImageURL,
		m.User.UID, m.User.Email, m.User.DisplayName,
	).Scan(&m.CreatedAt)
	if err != nil {
		return chat.Message{}, fmt.Errorf("insert message: %w", err)
	}

	// The write already succeeded; a lost notification only delays
	// subscribers until the next change.
	if err := s.rdb.Publish(ctx, eventChannel(m.ProjectID), m.ID).Err(); err != nil {
		log.Printf("[chat] publish change for project %s: %v", m.ProjectID, err)
	}

	return m, nil
}

func (s *Store) Query(ctx context.Context, projectID string) ([]chat.Message, error) {
	const q = `
select id, project_id, text, coalesce(image_url, ''), user_uid, user_email, coalesce(user_display_name, ''), created_at
from chat_messages
where project_id = $1
order by created_at desc, id desc
limit $2;
`
	rows, err := s.db.Query(ctx, q, projectID, snapshotLimit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	out := make([]chat.Message, 0, 32)
	for rows.Next() {
		var m chat.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Text, &m.ImageURL,
			&m.User.UID, &m.User.Email, &m.User.DisplayName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Subscribe delivers the current snapshot immediately, then re-queries and
// delivers the full result set on every change notification. The returned
// unsubscribe blocks until any in-flight delivery has completed, so no
// delivery happens after it returns.
func (s *Store) Subscribe(ctx context.Context, projectID string, deliver chat.SnapshotFunc) (func(), error) {
	initial, err := s.Query(ctx, projectID)
	if err != nil {
		return nil, err
	}
	deliver(initial)

	// The subscription outlives the establishing request.
	ps := s.rdb.Subscribe(context.Background(), eventChannel(projectID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe project %s: %w", projectID, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	ch := ps.Channel()

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				ms, err := s.Query(context.Background(), projectID)
				if err != nil {
					log.Printf("[chat] snapshot query for project %s: %v", projectID, err)
					continue
				}
				select {
				case <-stop:
					return
				default:
				}
				deliver(ms)
			}
		}
	}()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			close(stop)
			_ = ps.Close()
			<-done
		})
	}
	return unsubscribe, nil
}

// ImageURLInUse reports whether any message references url. The media
// janitor uses it to tell orphaned uploads from live ones.
func (s *Store) ImageURLInUse(ctx context.Context, url string) (bool, error) {
	const q = `select exists(select 1 from chat_messages where image_url = $1);`

	var inUse bool
	if err := s.db.QueryRow(ctx, q, url).Scan(&inUse); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check image url: %w", err)
	}
	return inUse, nil
}
