package model

import "time"

// OverviewRow is the per-problem attempt/accept tally of one contest problem.
type OverviewRow struct {
	ProblemID int64 `json:"problem_id"`
	Attempts  int   `json:"attempts"`
	Accepted  int   `json:"accepted"`
}

// Overview follows the contest's problem list order, one row per problem,
// including problems nobody has touched yet.
type Overview struct {
	ContestID int64         `json:"contest_id"`
	Problems  []OverviewRow `json:"problems"`
	BuiltAt   time.Time     `json:"built_at"`
}

// ProblemResult is one cell of the ranklist grid.
type ProblemResult struct {
	ProblemID      int64 `json:"problem_id"`
	Attempts       int   `json:"attempts"`
	Accepted       bool  `json:"accepted"`
	PenaltyMinutes int64 `json:"penalty_minutes,omitempty"` // only set once accepted
}

type RanklistRow struct {
	Rank          int                     `json:"rank"`
	UserID        string                  `json:"user_id"`
	Problems      map[int64]ProblemResult `json:"problems"`
	TotalAccepted int                     `json:"total_accepted"`
	TotalPenalty  int64                   `json:"total_penalty"`
}

// Ranklist rows are ordered by total accepted desc, total penalty asc,
// user ID asc.
type Ranklist struct {
	ContestID int64         `json:"contest_id"`
	Rows      []RanklistRow `json:"rows"`
	BuiltAt   time.Time     `json:"built_at"`
}
