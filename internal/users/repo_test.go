package users

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepo(t *testing.T) (*Repo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewRepo(db), mock, db
}

func TestRepo_EnsureUser(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("defaults display name to email local part", func(t *testing.T) {
		mock.ExpectQuery("insert into users").
			WithArgs("u1", "jane@example.com", "jane").
			WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "display_name", "created_at"}).
				AddRow("u1", "jane@example.com", "jane", time.Now()))

		u, err := repo.EnsureUser(context.Background(), UpsertUser{
			UID:   "u1",
			Email: "jane@example.com",
		})
		require.NoError(t, err)
		assert.Equal(t, "jane", u.DisplayName)
	})

	t.Run("keeps an explicit display name", func(t *testing.T) {
		mock.ExpectQuery("insert into users").
			WithArgs("u1", "jane@example.com", "Jane D").
			WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "display_name", "created_at"}).
				AddRow("u1", "jane@example.com", "Jane D", time.Now()))

		u, err := repo.EnsureUser(context.Background(), UpsertUser{
			UID:         "u1",
			Email:       "jane@example.com",
			DisplayName: "Jane D",
		})
		require.NoError(t, err)
		assert.Equal(t, "Jane D", u.DisplayName)
	})

	t.Run("rejects empty uid", func(t *testing.T) {
		_, err := repo.EnsureUser(context.Background(), UpsertUser{Email: "jane@example.com"})
		require.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_UpdateDisplayName(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("updates existing user", func(t *testing.T) {
		mock.ExpectExec("update users").
			WithArgs("u1", "Jane D").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateDisplayName(context.Background(), "u1", " Jane D "))
	})

	t.Run("unknown user", func(t *testing.T) {
		mock.ExpectExec("update users").
			WithArgs("missing", "Jane D").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateDisplayName(context.Background(), "missing", "Jane D")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		err := repo.UpdateDisplayName(context.Background(), "u1", "   ")
		require.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepo_GetByUID(t *testing.T) {
	repo, mock, db := setupRepo(t)
	defer db.Close()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("select uid").
			WithArgs("u1").
			WillReturnRows(sqlmock.NewRows([]string{"uid", "email", "display_name", "created_at"}).
				AddRow("u1", "jane@example.com", "jane", time.Now()))

		u, err := repo.GetByUID(context.Background(), "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", u.UID)
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("select uid").
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByUID(context.Background(), "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
