package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"judgeboard/internal/common"
	"judgeboard/internal/domain/model"
)

// ProblemRepository is consulted when a contest's problem list is validated.
// Existence is only checked at contest creation/update time; a problem
// deleted afterwards may leave dangling IDs behind, which is accepted.
type ProblemRepository interface {
	Exists(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM problems WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgProblemRepository.Exists: %w", err)
	}
	return exists, nil
}

func (r *pgProblemRepository) FindByID(ctx context.Context, id int64) (*model.Problem, error) {
	p := &model.Problem{}
	err := r.db.QueryRowContext(ctx, `SELECT id, title, created_at FROM problems WHERE id = $1`, id).
		Scan(&p.ID, &p.Title, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindByID: %w", err)
	}
	return p, nil
}
