package standings

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubContestRepo struct {
	mu      sync.Mutex
	contest *model.Contest
}

func (r *stubContestRepo) setContest(c *model.Contest) {
	r.mu.Lock()
	r.contest = c
	r.mu.Unlock()
}

func (r *stubContestRepo) Create(context.Context, *model.Contest) error { return nil }
func (r *stubContestRepo) Update(context.Context, *model.Contest) error { return nil }
func (r *stubContestRepo) Delete(context.Context, int64) error          { return nil }
func (r *stubContestRepo) List(context.Context, int, int, bool, string) ([]model.Contest, int, error) {
	return nil, 0, nil
}
func (r *stubContestRepo) FindByID(_ context.Context, id int64) (*model.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.contest == nil || r.contest.ID != id {
		return nil, common.ErrNotFound
	}
	c := *r.contest
	return &c, nil
}

type stubLedger struct {
	mu        sync.Mutex
	solutions []model.Solution
	scans     atomic.Int64
	scanDelay time.Duration
	fail      bool

	// When set, a scan signals scanStarted and then waits for scanRelease.
	scanStarted chan struct{}
	scanRelease chan struct{}
}

func (l *stubLedger) ListByContest(ctx context.Context, contestID int64) ([]model.Solution, error) {
	l.scans.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.scanStarted != nil {
		select {
		case l.scanStarted <- struct{}{}:
		default:
		}
	}
	if l.scanRelease != nil {
		<-l.scanRelease
	}
	if l.scanDelay > 0 {
		time.Sleep(l.scanDelay)
	}
	if l.fail {
		return nil, errors.New("ledger unreachable")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []model.Solution
	for _, s := range l.solutions {
		if s.ContestID == contestID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (l *stubLedger) Insert(_ context.Context, sol *model.Solution) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.solutions = append(l.solutions, *sol)
	return nil
}

func testContest() *model.Contest {
	start, _ := time.Parse(time.RFC3339, "2026-08-01T10:00:00Z")
	return &model.Contest{
		ID:             2001,
		Title:          "Summer Finals",
		StartAt:        start,
		EndAt:          start.Add(5 * time.Hour),
		ProblemList:    []int64{101, 102, 103},
		EncryptionMode: model.ModePublic,
		Status:         model.StatusAvailable,
	}
}

func sol(user string, problem int64, verdict model.Verdict, minutesIn int) model.Solution {
	start, _ := time.Parse(time.RFC3339, "2026-08-01T10:00:00Z")
	return model.Solution{
		UserID:      user,
		ContestID:   2001,
		ProblemID:   problem,
		Verdict:     verdict,
		SubmittedAt: start.Add(time.Duration(minutesIn) * time.Minute),
	}
}

func TestCache_ColdReadsCoalesceIntoOneRebuild(t *testing.T) {
	ledger := &stubLedger{scanDelay: 30 * time.Millisecond}
	ledger.solutions = []model.Solution{sol("alice", 101, model.VerdictAccepted, 10)}
	cache := NewCache(&stubContestRepo{contest: testContest()}, ledger, 20)

	const readers = 25
	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Ranklist(context.Background(), 2001)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), ledger.scans.Load(), "concurrent cold readers must trigger exactly one ledger scan")
	assert.Equal(t, int64(1), cache.RebuildCount())
}

func TestCache_InvalidateAndIdempotentReads(t *testing.T) {
	ledger := &stubLedger{}
	ledger.solutions = []model.Solution{sol("alice", 101, model.VerdictAccepted, 10)}
	cache := NewCache(&stubContestRepo{contest: testContest()}, ledger, 20)
	ctx := context.Background()

	first, err := cache.Ranklist(ctx, 2001)
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)
	require.Equal(t, int64(1), cache.RebuildCount())

	// A solution arriving between invalidations is invisible to repeated
	// reads: the snapshot is returned as-is.
	require.NoError(t, ledger.Insert(ctx, &model.Solution{
		UserID: "bob", ContestID: 2001, ProblemID: 102,
		Verdict: model.VerdictAccepted, SubmittedAt: testContest().StartAt.Add(30 * time.Minute),
	}))
	again, err := cache.Ranklist(ctx, 2001)
	require.NoError(t, err)
	assert.Same(t, first, again, "reads before invalidation return the identical snapshot")
	assert.Equal(t, int64(1), cache.RebuildCount())

	cache.Invalidate(2001)
	rebuilt, err := cache.Ranklist(ctx, 2001)
	require.NoError(t, err)
	assert.Len(t, rebuilt.Rows, 2, "rebuild after invalidation reflects newly inserted records")
	assert.Equal(t, int64(2), cache.RebuildCount())

	overview, err := cache.Overview(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cache.RebuildCount(), "overview shares the snapshot built for the ranklist")
	require.Len(t, overview.Problems, 3)
}

func TestCache_RebuildFailureIsExplicitAndNotCached(t *testing.T) {
	ledger := &stubLedger{fail: true}
	cache := NewCache(&stubContestRepo{contest: testContest()}, ledger, 20)
	ctx := context.Background()

	_, err := cache.Overview(ctx, 2001)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrRebuild))

	// The failure must not leave a poisoned entry behind; the next read
	// retries the ledger.
	ledger.fail = false
	_, err = cache.Overview(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ledger.scans.Load())
}

func TestCache_UnknownContest(t *testing.T) {
	cache := NewCache(&stubContestRepo{}, &stubLedger{}, 20)
	_, err := cache.Ranklist(context.Background(), 999)
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestCache_InvalidateDuringRebuildIsNotLost(t *testing.T) {
	contest := testContest()
	repo := &stubContestRepo{contest: contest}
	ledger := &stubLedger{scanStarted: make(chan struct{}, 1), scanRelease: make(chan struct{})}
	ledger.solutions = []model.Solution{sol("alice", 101, model.VerdictAccepted, 10)}
	cache := NewCache(repo, ledger, 20)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := cache.Overview(ctx, 2001)
		assert.NoError(t, err)
	}()

	// The rebuild has loaded the contest and is now scanning the ledger.
	// Shrink the problem list and invalidate, as the mutation flow does
	// before reporting success, then let the scan finish.
	<-ledger.scanStarted
	mutated := *contest
	mutated.ProblemList = []int64{101}
	repo.setContest(&mutated)
	cache.Invalidate(2001)
	close(ledger.scanRelease)
	<-done

	overview, err := cache.Overview(ctx, 2001)
	require.NoError(t, err)
	assert.Len(t, overview.Problems, 1, "a snapshot built from pre-mutation metadata must not survive Invalidate")
	assert.GreaterOrEqual(t, cache.RebuildCount(), int64(2), "the interrupted rebuild must be redone, not republished")
}

func TestCache_RebuildDetachedFromReaderContext(t *testing.T) {
	ledger := &stubLedger{}
	ledger.solutions = []model.Solution{sol("alice", 101, model.VerdictAccepted, 10)}
	cache := NewCache(&stubContestRepo{contest: testContest()}, ledger, 20)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// A reader arriving with an already-dead context still produces a usable
	// snapshot for everyone coalesced behind it.
	view, err := cache.Overview(ctx, 2001)
	require.NoError(t, err)
	require.Len(t, view.Problems, 3)
}
