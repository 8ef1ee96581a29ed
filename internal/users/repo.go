package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("user not found")

type User struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UpsertUser struct {
	UID         string
	Email       string
	DisplayName string
}

type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// EnsureUser creates the user row on first authenticated request and
// refreshes email on later ones. The display name defaults to the local
// part of the email and is only overwritten by an explicit update.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (*User, error) {
	if u.UID == "" {
		return nil, fmt.Errorf("uid required")
	}
	if u.DisplayName == "" {
		u.DisplayName = emailLocalPart(u.Email)
	}

	const q = `
insert into users (uid, email, display_name)
values ($1, nullif($2,''), nullif($3,''))
on conflict (uid) do update
set
  email = coalesce(excluded.email, users.email),
  updated_at = now()
returning uid, coalesce(email,''), coalesce(display_name,''), created_at;
`
	var out User
	err := r.db.QueryRowContext(ctx, q, u.UID, u.Email, u.DisplayName).
		Scan(&out.UID, &out.Email, &out.DisplayName, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("ensure user: %w", err)
	}
	return &out, nil
}

// UpdateDisplayName changes the user's display name. Empty names are
// rejected before touching the database.
func (r *Repo) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return fmt.Errorf("display name required")
	}

	const q = `
update users
set display_name = $2, updated_at = now()
where uid = $1;
`
	res, err := r.db.ExecContext(ctx, q, uid, displayName)
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update display name: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByUID(ctx context.Context, uid string) (*User, error) {
	const q = `
select uid, coalesce(email,''), coalesce(display_name,''), created_at
from users
where uid = $1;
`
	var out User
	err := r.db.QueryRowContext(ctx, q, uid).
		Scan(&out.UID, &out.Email, &out.DisplayName, &out.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &out, nil
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
