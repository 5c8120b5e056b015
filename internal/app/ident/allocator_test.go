package ident

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"judgeboard/internal/common"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPgAllocator_NextID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	alloc := NewPgAllocator(db, 1000)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO id_sequences").
			WithArgs(NamespaceContest, int64(1000)).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1001)))

		id, err := alloc.NextID(ctx, NamespaceContest)
		require.NoError(t, err)
		assert.Equal(t, int64(1001), id)
	})

	t.Run("IndependentNamespaces", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO id_sequences").
			WithArgs(NamespaceNews, int64(1000)).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1001)))

		id, err := alloc.NextID(ctx, NamespaceNews)
		require.NoError(t, err)
		assert.Equal(t, int64(1001), id)
	})

	t.Run("StorageFailureIsAllocationError", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO id_sequences").
			WithArgs(NamespaceContest, int64(1000)).
			WillReturnError(errors.New("connection refused"))

		_, err := alloc.NextID(ctx, NamespaceContest)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrAllocation))
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPgAllocator_ConcurrentCallsReturnDistinctIncreasingIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	const calls = 32
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < calls; i++ {
		mock.ExpectQuery("INSERT INTO id_sequences").
			WithArgs(NamespaceContest, int64(1000)).
			WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(int64(1001 + i)))
	}

	alloc := NewPgAllocator(db, 1000)
	ctx := context.Background()

	var mu sync.Mutex
	ids := make([]int64, 0, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.NextID(ctx, NamespaceContest)
			assert.NoError(t, err)
			mu.Lock()
			ids = append(ids, id)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, ids, calls)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i := 1; i < len(ids); i++ {
		assert.Less(t, ids[i-1], ids[i], "ids must be distinct and strictly increasing once sorted")
	}

	require.NoError(t, mock.ExpectationsWereMet())
}
