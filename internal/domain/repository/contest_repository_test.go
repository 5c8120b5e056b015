package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contestRow(id int64, status model.ContestStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "title", "start_at", "end_at", "problem_list", "encryption_mode",
		"secret", "invite_list", "status", "creator_id", "created_at", "updated_at",
	}).AddRow(id, "Round", now, now.Add(2*time.Hour), []byte("[101,102]"), "Password",
		"hunter2", []byte(`["alice"]`), string(status), "a1", now, now)
}

func TestPgContestRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgContestRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM contests WHERE id").
			WithArgs(int64(2001)).
			WillReturnRows(contestRow(2001, model.StatusAvailable))

		c, err := repo.FindByID(ctx, 2001)
		require.NoError(t, err)
		assert.Equal(t, int64(2001), c.ID)
		assert.Equal(t, []int64{101, 102}, c.ProblemList)
		assert.Equal(t, []string{"alice"}, c.InviteList)
		assert.Equal(t, model.ModePassword, c.EncryptionMode)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM contests WHERE id").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindByID(ctx, 404)
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgContestRepository(db)
	ctx := context.Background()

	t.Run("NonPrivilegedExcludesReserved", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM contests WHERE status !=").
			WithArgs(string(model.StatusReserved)).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM contests WHERE status != (.+) ORDER BY id DESC").
			WithArgs(string(model.StatusReserved), 20, 0).
			WillReturnRows(contestRow(2001, model.StatusAvailable))

		contests, total, err := repo.List(ctx, 20, 0, false, "")
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, contests, 1)
	})

	t.Run("TitleFilterIsBoundParameter", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM contests WHERE title ILIKE").
			WithArgs("%week%").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT (.+) FROM contests WHERE title ILIKE (.+) ORDER BY id DESC").
			WithArgs("%week%", 20, 0).
			WillReturnRows(contestRow(2002, model.StatusAvailable))

		contests, total, err := repo.List(ctx, 20, 0, true, "week")
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, contests, 1)
		assert.Equal(t, int64(2002), contests[0].ID)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgContestRepository_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPgContestRepository(db)
	ctx := context.Background()
	now := time.Now()
	contest := &model.Contest{
		ID: 2001, Title: "Round", StartAt: now, EndAt: now.Add(time.Hour),
		ProblemList: []int64{101}, EncryptionMode: model.ModePublic,
		Status: model.StatusAvailable,
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE contests SET").
			WillReturnResult(sqlmock.NewResult(0, 1))
		require.NoError(t, repo.Update(ctx, contest))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec("UPDATE contests SET").
			WillReturnResult(sqlmock.NewResult(0, 0))
		err := repo.Update(ctx, contest)
		assert.True(t, errors.Is(err, common.ErrNotFound))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
