package service

import (
	"context"
	"time"

	"judgeboard/internal/app/access"
	"judgeboard/internal/app/ident"
	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"
	"judgeboard/internal/domain/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// StandingsCache is what the mutation flow needs from the standings layer:
// reads for the two view endpoints, invalidation on content mutations.
type StandingsCache interface {
	Overview(ctx context.Context, contestID int64) (*model.Overview, error)
	Ranklist(ctx context.Context, contestID int64) (*model.Ranklist, error)
	Invalidate(contestID int64)
	Remove(contestID int64)
}

type ContestService struct {
	contestRepo repository.ContestRepository
	problemRepo repository.ProblemRepository
	allocator   ident.Allocator
	gate        *access.Gate
	standings   StandingsCache
	validate    *validator.Validate
	log         *logrus.Logger
}

func NewContestService(
	contestRepo repository.ContestRepository,
	problemRepo repository.ProblemRepository,
	allocator ident.Allocator,
	gate *access.Gate,
	standings StandingsCache,
	log *logrus.Logger,
) *ContestService {
	return &ContestService{
		contestRepo: contestRepo,
		problemRepo: problemRepo,
		allocator:   allocator,
		gate:        gate,
		standings:   standings,
		validate:    validator.New(),
		log:         log,
	}
}

type CreateContestRequest struct {
	Title          string               `json:"title" validate:"required,max=128"`
	StartAt        time.Time            `json:"start_at" validate:"required"`
	EndAt          time.Time            `json:"end_at" validate:"required"`
	ProblemList    []int64              `json:"problem_list"`
	EncryptionMode model.EncryptionMode `json:"encryption_mode" validate:"required"`
	Secret         string               `json:"secret"`
	InviteList     []string             `json:"invite_list"`
	Status         model.ContestStatus  `json:"status"`
}

// UpdateContestRequest enumerates every updatable field explicitly; absent
// fields are left untouched. The set is closed; nothing is copied from a
// generic payload by field name.
type UpdateContestRequest struct {
	Title          *string               `json:"title,omitempty" validate:"omitempty,max=128"`
	StartAt        *time.Time            `json:"start_at,omitempty"`
	EndAt          *time.Time            `json:"end_at,omitempty"`
	ProblemList    *[]int64              `json:"problem_list,omitempty"`
	EncryptionMode *model.EncryptionMode `json:"encryption_mode,omitempty"`
	Secret         *string               `json:"secret,omitempty"`
	InviteList     *[]string             `json:"invite_list,omitempty"`
	Status         *model.ContestStatus  `json:"status,omitempty"`
}

func (s *ContestService) CreateContest(ctx context.Context, requester access.Requester, req CreateContestRequest) (*model.Contest, error) {
	if !requester.Privileged() {
		return nil, common.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrValidation)
	}
	if req.Status == "" {
		req.Status = model.StatusAvailable
	}
	contest := &model.Contest{
		Title:          req.Title,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
		ProblemList:    req.ProblemList,
		EncryptionMode: req.EncryptionMode,
		Secret:         req.Secret,
		InviteList:     req.InviteList,
		Status:         req.Status,
		CreatorID:      requester.ID,
	}
	if err := s.checkContest(ctx, contest); err != nil {
		return nil, err
	}

	// The ID must exist before anything is persisted; allocation failure
	// aborts creation outright.
	id, err := s.allocator.NextID(ctx, ident.NamespaceContest)
	if err != nil {
		return nil, err
	}
	contest.ID = id

	if err := s.contestRepo.Create(ctx, contest); err != nil {
		return nil, common.Errorf("failed to create contest: %w", err)
	}
	s.log.WithFields(logrus.Fields{"contest_id": id, "creator": requester.ID}).Info("contest created")
	return contest, nil
}

func (s *ContestService) UpdateContest(ctx context.Context, requester access.Requester, id int64, req UpdateContestRequest) (*model.Contest, error) {
	if !requester.Privileged() {
		return nil, common.ErrForbidden
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, common.Errorf("%v: %w", err, common.ErrValidation)
	}

	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contentChanged := false
	if req.Title != nil {
		contest.Title = *req.Title
	}
	if req.StartAt != nil && !req.StartAt.Equal(contest.StartAt) {
		contest.StartAt = *req.StartAt
		contentChanged = true
	}
	if req.EndAt != nil && !req.EndAt.Equal(contest.EndAt) {
		contest.EndAt = *req.EndAt
		contentChanged = true
	}
	if req.ProblemList != nil {
		if !equalProblemLists(contest.ProblemList, *req.ProblemList) {
			contentChanged = true
		}
		contest.ProblemList = *req.ProblemList
	}
	if req.EncryptionMode != nil {
		contest.EncryptionMode = *req.EncryptionMode
	}
	if req.Secret != nil {
		contest.Secret = *req.Secret
	}
	if req.InviteList != nil {
		contest.InviteList = *req.InviteList
	}
	if req.Status != nil {
		contest.Status = *req.Status
	}

	if err := s.checkContest(ctx, contest); err != nil {
		return nil, err
	}
	if err := s.contestRepo.Update(ctx, contest); err != nil {
		return nil, common.Errorf("failed to update contest: %w", err)
	}

	// Views derive from the problem list and the time window only; title,
	// status and secret edits leave cached standings valid.
	if contentChanged {
		s.standings.Invalidate(id)
	}
	s.log.WithFields(logrus.Fields{"contest_id": id, "invalidated": contentChanged}).Info("contest updated")
	return contest, nil
}

func (s *ContestService) DeleteContest(ctx context.Context, requester access.Requester, id int64) error {
	if !requester.Privileged() {
		return common.ErrForbidden
	}
	if err := s.contestRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.standings.Remove(id)
	s.log.WithField("contest_id", id).Info("contest deleted")
	return nil
}

// checkContest enforces the scheduling window and that every listed problem
// exists right now. Problems deleted later may leave dangling references in
// the ledger; that is accepted and not re-checked.
func (s *ContestService) checkContest(ctx context.Context, c *model.Contest) error {
	if c.EndAt.Before(c.StartAt) {
		return common.Errorf("contest must not end before it starts: %w", common.ErrValidation)
	}
	if !c.EncryptionMode.Valid() {
		return common.Errorf("unknown encryption mode %q: %w", c.EncryptionMode, common.ErrValidation)
	}
	if !c.Status.Valid() {
		return common.Errorf("unknown contest status %q: %w", c.Status, common.ErrValidation)
	}
	if c.EncryptionMode == model.ModePassword && c.Secret == "" {
		return common.Errorf("password-mode contest needs a secret: %w", common.ErrValidation)
	}
	for _, pid := range c.ProblemList {
		exists, err := s.problemRepo.Exists(ctx, pid)
		if err != nil {
			return common.Errorf("failed to check problem %d: %w", pid, err)
		}
		if !exists {
			return common.Errorf("referenced problem %d not found: %w", pid, common.ErrValidation)
		}
	}
	return nil
}

func (s *ContestService) GetContest(ctx context.Context, requester access.Requester, sessionID string, id int64) (*model.Contest, access.Decision, error) {
	contest, err := s.loadVisible(ctx, requester, id)
	if err != nil {
		return nil, access.Allow, err
	}
	decision, err := s.gate.Authorize(ctx, contest, requester, sessionID)
	if err != nil {
		return nil, decision, common.Errorf("authorize contest %d: %w", id, err)
	}
	if decision != access.Allow {
		return nil, decision, nil
	}
	if !requester.Privileged() {
		contest.Sanitize()
	}
	return contest, access.Allow, nil
}

func (s *ContestService) ListContests(ctx context.Context, requester access.Requester, page, pageSize int, titleFilter string) ([]model.Contest, int, error) {
	limit := pageSize
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}

	contests, total, err := s.contestRepo.List(ctx, limit, offset, requester.Privileged(), titleFilter)
	if err != nil {
		return nil, 0, err
	}
	if !requester.Privileged() {
		for i := range contests {
			contests[i].Sanitize()
		}
	}
	return contests, total, nil
}

// VerifyContest runs the session's Unverified -> Verified transition. The
// returned decision is Allow on success or the reason the secret was refused;
// a refusal is not an error.
func (s *ContestService) VerifyContest(ctx context.Context, requester access.Requester, sessionID string, id int64, secret string) (access.Decision, error) {
	contest, err := s.loadVisible(ctx, requester, id)
	if err != nil {
		return access.Allow, err
	}
	decision, err := s.gate.Verify(ctx, contest, requester, sessionID, secret)
	if err != nil {
		return decision, common.Errorf("verify contest %d: %w", id, err)
	}
	if decision != access.Allow {
		s.log.WithFields(logrus.Fields{
			"contest_id": id,
			"user_id":    requester.ID,
			"reason":     decision.String(),
		}).Debug("contest verification refused")
	}
	return decision, nil
}

func (s *ContestService) Overview(ctx context.Context, requester access.Requester, sessionID string, id int64) (*model.Overview, access.Decision, error) {
	if decision, err := s.authorizeView(ctx, requester, sessionID, id); err != nil || decision != access.Allow {
		return nil, decision, err
	}
	view, err := s.standings.Overview(ctx, id)
	if err != nil {
		return nil, access.Allow, err
	}
	return view, access.Allow, nil
}

func (s *ContestService) Ranklist(ctx context.Context, requester access.Requester, sessionID string, id int64) (*model.Ranklist, access.Decision, error) {
	if decision, err := s.authorizeView(ctx, requester, sessionID, id); err != nil || decision != access.Allow {
		return nil, decision, err
	}
	view, err := s.standings.Ranklist(ctx, id)
	if err != nil {
		return nil, access.Allow, err
	}
	return view, access.Allow, nil
}

func (s *ContestService) authorizeView(ctx context.Context, requester access.Requester, sessionID string, id int64) (access.Decision, error) {
	contest, err := s.loadVisible(ctx, requester, id)
	if err != nil {
		return access.Allow, err
	}
	decision, err := s.gate.Authorize(ctx, contest, requester, sessionID)
	if err != nil {
		return decision, common.Errorf("authorize contest %d: %w", id, err)
	}
	return decision, nil
}

// loadVisible fetches a contest and hides Reserved ones from non-privileged
// requesters entirely, independent of encryption mode.
func (s *ContestService) loadVisible(ctx context.Context, requester access.Requester, id int64) (*model.Contest, error) {
	contest, err := s.contestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contest.Status == model.StatusReserved && !requester.Privileged() {
		return nil, common.ErrNotFound
	}
	return contest, nil
}

func equalProblemLists(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
