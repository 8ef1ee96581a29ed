package projects

import (
	"context"
	"fmt"

	"github.com/k1w1proplus/chat-backend/internal/settings"
)

// Store is the project persistence contract the directory needs;
// satisfied by Repo.
type Store interface {
	Create(ctx context.Context, ownerID, name string) (*Project, error)
	List(ctx context.Context, ownerID string) ([]Project, error)
	Get(ctx context.Context, ownerID, projectID string) (*Project, error)
}

// Directory combines the project store with the settings-owned active
// pointer. Activation transitions: none -> active on first create or
// explicit select, active(p) -> active(p') on select, active -> none on
// clear.
type Directory struct {
	repo     Store
	settings *settings.Repo
}

func NewDirectory(repo Store, st *settings.Repo) *Directory {
	return &Directory{repo: repo, settings: st}
}

func (d *Directory) List(ctx context.Context, ownerID string) ([]Project, error) {
	return d.repo.List(ctx, ownerID)
}

// Create inserts the project and, when the owner has no active project yet,
// makes the new one active. Activation uses an atomic set-if-unset so two
// concurrent first creates cannot both win the pointer.
func (d *Directory) Create(ctx context.Context, ownerID, name string) (*Project, error) {
	p, err := d.repo.Create(ctx, ownerID, name)
	if err != nil {
		return nil, err
	}

	if _, err := d.settings.SetActiveProjectIfUnset(ctx, ownerID, p.ID); err != nil {
		return nil, fmt.Errorf("activate project: %w", err)
	}
	return p, nil
}

// Select makes projectID the owner's active project. Ownership is checked
// first so a user can never point their feed at someone else's project.
func (d *Directory) Select(ctx context.Context, ownerID, projectID string) (*Project, error) {
	p, err := d.repo.Get(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	if err := d.settings.SetActiveProject(ctx, ownerID, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

// Clear drops the active pointer, returning the owner to the no-project
// state.
func (d *Directory) Clear(ctx context.Context, ownerID string) error {
	return d.settings.ClearActiveProject(ctx, ownerID)
}

// Active resolves the owner's active project, (nil, nil) when none is set.
// A pointer at a project that no longer exists (or was never the owner's)
// is treated as unset.
func (d *Directory) Active(ctx context.Context, ownerID string) (*Project, error) {
	id, err := d.settings.ActiveProject(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, nil
	}

	p, err := d.repo.Get(ctx, ownerID, id)
	if err == ErrNotFound {
		return nil, nil
	}
	return p, err
}
