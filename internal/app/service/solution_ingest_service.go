package service

import (
	"context"
	"time"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"
	"judgeboard/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SolutionIngestService receives judged submissions from the external judge
// and appends them to the solution ledger. It deliberately does NOT touch the
// standings cache: a record landing between invalidations becomes visible on
// the next rebuild, which is the staleness contract of the views.
type SolutionIngestService struct {
	solutionRepo repository.SolutionRepository
	contestRepo  repository.ContestRepository
	log          *logrus.Logger
}

func NewSolutionIngestService(solutionRepo repository.SolutionRepository, contestRepo repository.ContestRepository, log *logrus.Logger) *SolutionIngestService {
	return &SolutionIngestService{solutionRepo: solutionRepo, contestRepo: contestRepo, log: log}
}

// JudgedSolutionPayload is the shape the judge posts to the webhook.
type JudgedSolutionPayload struct {
	UserID      string        `json:"user_id"`
	ContestID   int64         `json:"contest_id"`
	ProblemID   int64         `json:"problem_id"`
	Verdict     model.Verdict `json:"verdict"`
	SubmittedAt time.Time     `json:"submitted_at"`
}

func (s *SolutionIngestService) HandleJudgedSolution(ctx context.Context, payload JudgedSolutionPayload) (*model.Solution, error) {
	if payload.UserID == "" || payload.ContestID == 0 || payload.ProblemID == 0 || payload.Verdict == "" {
		return nil, common.Errorf("judged solution payload is missing fields: %w", common.ErrValidation)
	}
	// The contest must exist; the problem is not re-checked against the
	// contest's list here, stale problem IDs are tolerated downstream.
	if _, err := s.contestRepo.FindByID(ctx, payload.ContestID); err != nil {
		return nil, err
	}

	if payload.SubmittedAt.IsZero() {
		payload.SubmittedAt = time.Now().UTC()
	}
	sol := &model.Solution{
		ID:          uuid.NewString(),
		UserID:      payload.UserID,
		ContestID:   payload.ContestID,
		ProblemID:   payload.ProblemID,
		Verdict:     payload.Verdict,
		SubmittedAt: payload.SubmittedAt,
	}
	if err := s.solutionRepo.Insert(ctx, sol); err != nil {
		return nil, common.Errorf("failed to append solution: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"contest_id": sol.ContestID,
		"problem_id": sol.ProblemID,
		"verdict":    sol.Verdict,
	}).Debug("solution appended to ledger")
	return sol, nil
}
