// Package standings materializes the per-problem overview and the
// per-competitor ranklist of a contest from the solution ledger, and caches
// them until a contest mutation invalidates them.
package standings

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"
	"judgeboard/internal/domain/repository"
	"judgeboard/internal/platform/metrics"

	"golang.org/x/sync/singleflight"
)

// snapshot bundles both views built from one ledger scan. Snapshots are
// immutable once published; readers share them without locking.
type snapshot struct {
	overview *model.Overview
	ranklist *model.Ranklist
}

type Cache struct {
	contests repository.ContestRepository
	ledger   repository.SolutionRepository
	penalty  int // minutes charged per wrong attempt on a solved problem

	group singleflight.Group

	mu        sync.RWMutex
	snapshots map[int64]*snapshot
	gens      map[int64]uint64

	rebuilds atomic.Int64
}

func NewCache(contests repository.ContestRepository, ledger repository.SolutionRepository, penaltyMinutes int) *Cache {
	return &Cache{
		contests:  contests,
		ledger:    ledger,
		penalty:   penaltyMinutes,
		snapshots: make(map[int64]*snapshot),
		gens:      make(map[int64]uint64),
	}
}

func (c *Cache) Overview(ctx context.Context, contestID int64) (*model.Overview, error) {
	snap, err := c.snapshot(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return snap.overview, nil
}

func (c *Cache) Ranklist(ctx context.Context, contestID int64) (*model.Ranklist, error) {
	snap, err := c.snapshot(ctx, contestID)
	if err != nil {
		return nil, err
	}
	return snap.ranklist, nil
}

// Invalidate drops the cached views for one contest. The next reader pays
// the rebuild cost. Must be called before a mutation of the problem list or
// time window reports success. Bumping the generation also discards any
// rebuild currently in flight for the contest, since that rebuild read
// pre-mutation state.
func (c *Cache) Invalidate(contestID int64) {
	c.mu.Lock()
	delete(c.snapshots, contestID)
	c.gens[contestID]++
	c.mu.Unlock()
}

// Remove is Invalidate for a deleted contest; kept separate for call-site
// intent, there is nothing extra to clean up.
func (c *Cache) Remove(contestID int64) {
	c.Invalidate(contestID)
}

// RebuildCount reports how many full ledger scans have run.
func (c *Cache) RebuildCount() int64 {
	return c.rebuilds.Load()
}

func (c *Cache) snapshot(ctx context.Context, contestID int64) (*snapshot, error) {
	c.mu.RLock()
	snap, ok := c.snapshots[contestID]
	c.mu.RUnlock()
	if ok {
		metrics.StandingsCacheHits.Inc()
		return snap, nil
	}

	// Concurrent cold readers coalesce onto one rebuild per contest. The
	// rebuild runs on a detached context: the first cold reader giving up
	// must not fail every waiter that coalesced onto it.
	v, err, _ := c.group.Do(strconv.FormatInt(contestID, 10), func() (interface{}, error) {
		rebuildCtx := context.WithoutCancel(ctx)
		for {
			c.mu.RLock()
			snap, ok := c.snapshots[contestID]
			gen := c.gens[contestID]
			c.mu.RUnlock()
			if ok {
				return snap, nil
			}

			snap, err := c.rebuild(rebuildCtx, contestID)
			if err != nil {
				return nil, err
			}

			c.mu.Lock()
			if c.gens[contestID] == gen {
				c.snapshots[contestID] = snap
				c.mu.Unlock()
				return snap, nil
			}
			c.mu.Unlock()
			// Invalidated while the rebuild was scanning, so the snapshot
			// may predate the mutation. Scan again.
		}
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (c *Cache) rebuild(ctx context.Context, contestID int64) (*snapshot, error) {
	c.rebuilds.Add(1)
	metrics.StandingsRebuilds.Inc()

	contest, err := c.contests.FindByID(ctx, contestID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		metrics.StandingsRebuildFailures.Inc()
		return nil, common.Errorf("standings rebuild: load contest %d: %v: %w", contestID, err, common.ErrRebuild)
	}

	solutions, err := c.ledger.ListByContest(ctx, contestID)
	if err != nil {
		metrics.StandingsRebuildFailures.Inc()
		return nil, common.Errorf("standings rebuild: scan ledger for contest %d: %v: %w", contestID, err, common.ErrRebuild)
	}

	return build(contest, solutions, c.penalty), nil
}
