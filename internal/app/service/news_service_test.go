package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNewsRepo struct {
	mu    sync.Mutex
	items map[int64]*model.News
}

func newFakeNewsRepo() *fakeNewsRepo {
	return &fakeNewsRepo{items: make(map[int64]*model.News)}
}

func (r *fakeNewsRepo) Create(_ context.Context, n *model.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *n
	r.items[n.ID] = &cp
	return nil
}

func (r *fakeNewsRepo) Update(_ context.Context, n *model.News) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[n.ID]; !ok {
		return common.ErrNotFound
	}
	cp := *n
	r.items[n.ID] = &cp
	return nil
}

func (r *fakeNewsRepo) FindByID(_ context.Context, id int64) (*model.News, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.items[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *fakeNewsRepo) List(context.Context, int, int) ([]model.News, int, error) {
	return nil, 0, nil
}

func (r *fakeNewsRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func TestNewsService_CreateNews(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := newFakeNewsRepo()
		svc := NewNewsService(repo, &fakeAllocator{next: 1000}, quietLogger())

		news, err := svc.CreateNews(ctx, admin, CreateNewsRequest{Title: "Judge Maintenance Window", Body: "Down Friday."})
		require.NoError(t, err)
		assert.Equal(t, int64(1001), news.ID)
		assert.Equal(t, "judge-maintenance-window", news.Slug)
	})

	t.Run("NonPrivilegedForbidden", func(t *testing.T) {
		svc := NewNewsService(newFakeNewsRepo(), &fakeAllocator{}, quietLogger())
		_, err := svc.CreateNews(ctx, user, CreateNewsRequest{Title: "t", Body: "b"})
		assert.True(t, errors.Is(err, common.ErrForbidden))
	})

	t.Run("AllocatorFailureAbortsCreation", func(t *testing.T) {
		repo := newFakeNewsRepo()
		svc := NewNewsService(repo, &fakeAllocator{fail: true}, quietLogger())
		_, err := svc.CreateNews(ctx, admin, CreateNewsRequest{Title: "t", Body: "b"})
		assert.True(t, errors.Is(err, common.ErrAllocation))
		assert.Empty(t, repo.items)
	})
}

func TestNewsService_UpdateNews(t *testing.T) {
	ctx := context.Background()
	repo := newFakeNewsRepo()
	svc := NewNewsService(repo, &fakeAllocator{next: 1000}, quietLogger())

	news, err := svc.CreateNews(ctx, admin, CreateNewsRequest{Title: "Original", Body: "b"})
	require.NoError(t, err)

	title := "Rescheduled Maintenance"
	updated, err := svc.UpdateNews(ctx, admin, news.ID, UpdateNewsRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "rescheduled-maintenance", updated.Slug)
	assert.Equal(t, "b", updated.Body)

	_, err = svc.UpdateNews(ctx, admin, 9999, UpdateNewsRequest{Title: &title})
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
