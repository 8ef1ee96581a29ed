package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// Create inserts a project owned by ownerID. Names are not unique;
// duplicates are permitted.
func (r *Repo) Create(ctx context.Context, ownerID, name string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name required")
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner required")
	}

	const q = `
insert into projects (id, name, owner_id)
values ($1, $2, $3)
returning created_at;
`
	p := &Project{
		ID:      uuid.NewString(),
		Name:    name,
		OwnerID: ownerID,
	}
	if err := r.db.QueryRow(ctx, q, p.ID, p.Name, p.OwnerID).Scan(&p.CreatedAt); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return p, nil
}

// List returns only projects whose owner matches ownerID, newest first.
func (r *Repo) List(ctx context.Context, ownerID string) ([]Project, error) {
	const q = `
select id, name, owner_id, created_at
from projects
where owner_id = $1
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Get returns the project only if ownerID owns it.
func (r *Repo) Get(ctx context.Context, ownerID, projectID string) (*Project, error) {
	const q = `
select id, name, owner_id, created_at
from projects
where id = $1 and owner_id = $2;
`
	var p Project
	err := r.db.QueryRow(ctx, q, projectID, ownerID).Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}
