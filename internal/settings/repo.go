package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	settingKeyPrefix = "settings:" // settings:{uid}:{name}

	KeyActiveProject = "activeProjectId"
	KeyAIAPIKey      = "aiApiKey"
)

// Repo is the single owner of per-user device settings: the active-project
// pointer and the AI API key. No other component reads or writes these
// values directly.
type Repo struct {
	client *redis.Client
}

func NewRepo(client *redis.Client) *Repo {
	return &Repo{client: client}
}

func (r *Repo) key(uid, name string) string {
	return fmt.Sprintf("%s%s:%s", settingKeyPrefix, uid, name)
}

// Get returns the stored value, "" when the setting is absent.
func (r *Repo) Get(ctx context.Context, uid, name string) (string, error) {
	v, err := r.client.Get(ctx, r.key(uid, name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %s: %w", name, err)
	}
	return v, nil
}

func (r *Repo) Set(ctx context.Context, uid, name, value string) error {
	if value == "" {
		return fmt.Errorf("setting %s: value required", name)
	}
	if err := r.client.Set(ctx, r.key(uid, name), value, 0).Err(); err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return nil
}

// SetIfUnset writes the value only when the setting is currently absent.
// Returns whether the write happened. The check and write are one atomic
// SETNX, so concurrent callers cannot both win.
func (r *Repo) SetIfUnset(ctx context.Context, uid, name, value string) (bool, error) {
	if value == "" {
		return false, fmt.Errorf("setting %s: value required", name)
	}
	set, err := r.client.SetNX(ctx, r.key(uid, name), value, 0).Result()
	if err != nil {
		return false, fmt.Errorf("set setting %s: %w", name, err)
	}
	return set, nil
}

func (r *Repo) Clear(ctx context.Context, uid, name string) error {
	if err := r.client.Del(ctx, r.key(uid, name)).Err(); err != nil {
		return fmt.Errorf("clear setting %s: %w", name, err)
	}
	return nil
}

// ActiveProject returns the active project pointer, "" until a project has
// been created or chosen.
func (r *Repo) ActiveProject(ctx context.Context, uid string) (string, error) {
	return r.Get(ctx, uid, KeyActiveProject)
}

func (r *Repo) SetActiveProject(ctx context.Context, uid, projectID string) error {
	return r.Set(ctx, uid, KeyActiveProject, projectID)
}

// SetActiveProjectIfUnset claims the pointer only when none is set.
func (r *Repo) SetActiveProjectIfUnset(ctx context.Context, uid, projectID string) (bool, error) {
	return r.SetIfUnset(ctx, uid, KeyActiveProject, projectID)
}

func (r *Repo) ClearActiveProject(ctx context.Context, uid string) error {
	return r.Clear(ctx, uid, KeyActiveProject)
}
