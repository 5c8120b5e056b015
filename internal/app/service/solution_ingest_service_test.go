package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSolutionRepo struct {
	mu        sync.Mutex
	solutions []model.Solution
}

func (r *fakeSolutionRepo) ListByContest(_ context.Context, contestID int64) ([]model.Solution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Solution
	for _, s := range r.solutions {
		if s.ContestID == contestID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *fakeSolutionRepo) Insert(_ context.Context, sol *model.Solution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.solutions = append(r.solutions, *sol)
	return nil
}

func TestSolutionIngestService_HandleJudgedSolution(t *testing.T) {
	ctx := context.Background()

	contests := newFakeContestRepo()
	require.NoError(t, contests.Create(ctx, &model.Contest{ID: 2001, Title: "Round", Status: model.StatusAvailable}))

	t.Run("AppendsToLedger", func(t *testing.T) {
		ledger := &fakeSolutionRepo{}
		svc := NewSolutionIngestService(ledger, contests, quietLogger())

		sol, err := svc.HandleJudgedSolution(ctx, JudgedSolutionPayload{
			UserID:      "u1",
			ContestID:   2001,
			ProblemID:   101,
			Verdict:     model.VerdictAccepted,
			SubmittedAt: time.Now(),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, sol.ID)
		assert.Len(t, ledger.solutions, 1)
	})

	t.Run("UnknownContestRejected", func(t *testing.T) {
		ledger := &fakeSolutionRepo{}
		svc := NewSolutionIngestService(ledger, contests, quietLogger())

		_, err := svc.HandleJudgedSolution(ctx, JudgedSolutionPayload{
			UserID: "u1", ContestID: 404, ProblemID: 101, Verdict: model.VerdictAccepted,
		})
		assert.True(t, errors.Is(err, common.ErrNotFound))
		assert.Empty(t, ledger.solutions)
	})

	t.Run("MissingFieldsRejected", func(t *testing.T) {
		svc := NewSolutionIngestService(&fakeSolutionRepo{}, contests, quietLogger())
		_, err := svc.HandleJudgedSolution(ctx, JudgedSolutionPayload{ContestID: 2001})
		assert.True(t, errors.Is(err, common.ErrValidation))
	})
}
