package repository

import (
	"context"
	"database/sql"
	"fmt"

	"judgeboard/internal/domain/model"
)

// SolutionRepository fronts the solution ledger. The standings cache only
// ever reads it; the judge webhook is the single writer.
type SolutionRepository interface {
	ListByContest(ctx context.Context, contestID int64) ([]model.Solution, error)
	Insert(ctx context.Context, sol *model.Solution) error
}

type pgSolutionRepository struct {
	db *sql.DB
}

func NewPgSolutionRepository(db *sql.DB) SolutionRepository {
	return &pgSolutionRepository{db: db}
}

// ListByContest returns every judged submission of one contest in submission
// order. Standings rebuilds depend on that ordering for penalty accounting.
func (r *pgSolutionRepository) ListByContest(ctx context.Context, contestID int64) ([]model.Solution, error) {
	query := `SELECT id, user_id, contest_id, problem_id, verdict, submitted_at
	          FROM solutions WHERE contest_id = $1 ORDER BY submitted_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.ListByContest query: %w", err)
	}
	defer rows.Close()

	var solutions []model.Solution
	for rows.Next() {
		var s model.Solution
		if err := rows.Scan(&s.ID, &s.UserID, &s.ContestID, &s.ProblemID, &s.Verdict, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("pgSolutionRepository.ListByContest scan: %w", err)
		}
		solutions = append(solutions, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSolutionRepository.ListByContest rows.Err: %w", err)
	}
	return solutions, nil
}

func (r *pgSolutionRepository) Insert(ctx context.Context, sol *model.Solution) error {
	query := `INSERT INTO solutions (id, user_id, contest_id, problem_id, verdict, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, query, sol.ID, sol.UserID, sol.ContestID, sol.ProblemID, sol.Verdict, sol.SubmittedAt)
	if err != nil {
		return fmt.Errorf("pgSolutionRepository.Insert: %w", err)
	}
	return nil
}
