package standings

import (
	"sort"
	"time"

	"judgeboard/internal/domain/model"
)

// build derives both views from one pass over the contest's solutions.
// Solutions must arrive in submission order. Submissions for problems no
// longer on the contest's problem list are skipped; submissions landing after
// a problem is already solved by that user do not change its cells.
func build(contest *model.Contest, solutions []model.Solution, penaltyMinutes int) *snapshot {
	listed := make(map[int64]bool, len(contest.ProblemList))
	for _, pid := range contest.ProblemList {
		listed[pid] = true
	}

	tally := make(map[int64]*model.OverviewRow, len(contest.ProblemList))
	competitors := make(map[string]*model.RanklistRow)

	for i := range solutions {
		sol := &solutions[i]
		if !listed[sol.ProblemID] {
			continue
		}

		row, ok := competitors[sol.UserID]
		if !ok {
			row = &model.RanklistRow{
				UserID:   sol.UserID,
				Problems: make(map[int64]model.ProblemResult),
			}
			competitors[sol.UserID] = row
		}

		cell := row.Problems[sol.ProblemID]
		cell.ProblemID = sol.ProblemID
		if cell.Accepted {
			row.Problems[sol.ProblemID] = cell
			continue
		}

		cell.Attempts++
		if t := tally[sol.ProblemID]; t == nil {
			tally[sol.ProblemID] = &model.OverviewRow{ProblemID: sol.ProblemID, Attempts: 1}
		} else {
			t.Attempts++
		}

		if sol.Verdict.Accepted() {
			cell.Accepted = true
			cell.PenaltyMinutes = solveMinutes(contest.StartAt, sol.SubmittedAt) +
				int64(cell.Attempts-1)*int64(penaltyMinutes)
			tally[sol.ProblemID].Accepted++
			row.TotalAccepted++
			row.TotalPenalty += cell.PenaltyMinutes
		}
		row.Problems[sol.ProblemID] = cell
	}

	builtAt := time.Now().UTC()

	overview := &model.Overview{
		ContestID: contest.ID,
		Problems:  make([]model.OverviewRow, 0, len(contest.ProblemList)),
		BuiltAt:   builtAt,
	}
	for _, pid := range contest.ProblemList {
		if t := tally[pid]; t != nil {
			overview.Problems = append(overview.Problems, *t)
		} else {
			overview.Problems = append(overview.Problems, model.OverviewRow{ProblemID: pid})
		}
	}

	ranklist := &model.Ranklist{
		ContestID: contest.ID,
		Rows:      make([]model.RanklistRow, 0, len(competitors)),
		BuiltAt:   builtAt,
	}
	for _, row := range competitors {
		ranklist.Rows = append(ranklist.Rows, *row)
	}
	sort.Slice(ranklist.Rows, func(i, j int) bool {
		a, b := ranklist.Rows[i], ranklist.Rows[j]
		if a.TotalAccepted != b.TotalAccepted {
			return a.TotalAccepted > b.TotalAccepted
		}
		if a.TotalPenalty != b.TotalPenalty {
			return a.TotalPenalty < b.TotalPenalty
		}
		return a.UserID < b.UserID
	})
	for i := range ranklist.Rows {
		ranklist.Rows[i].Rank = i + 1
	}

	return &snapshot{overview: overview, ranklist: ranklist}
}

func solveMinutes(start, submitted time.Time) int64 {
	d := submitted.Sub(start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Minute)
}
