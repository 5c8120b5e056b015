package model

import "time"

type Verdict string

const (
	VerdictAccepted            Verdict = "Accepted"
	VerdictWrongAnswer         Verdict = "WrongAnswer"
	VerdictTimeLimitExceeded   Verdict = "TimeLimitExceeded"
	VerdictMemoryLimitExceeded Verdict = "MemoryLimitExceeded"
	VerdictRuntimeError        Verdict = "RuntimeError"
	VerdictCompilationError    Verdict = "CompilationError"
)

// Solution is one judged submission event, append-only from this backend's
// point of view: the standings cache reads these, the judge webhook appends
// them, nothing updates them.
type Solution struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	ContestID   int64     `json:"contest_id"`
	ProblemID   int64     `json:"problem_id"`
	Verdict     Verdict   `json:"verdict"`
	SubmittedAt time.Time `json:"submitted_at"`
}

func (v Verdict) Accepted() bool {
	return v == VerdictAccepted
}
