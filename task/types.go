package task

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusSubmitted Status = "submitted"
	StatusMissed    Status = "missed"
)

// Task is a content-writing assignment. Submitted and missed are terminal.
type Task struct {
	ID          string
	QuestionRef string
	Topic       string
	AnswerDraft string

	AssignedTo string
	AssignedBy string
	AssignedAt time.Time // zero when absent
	// DueAt is informational; the missed cutoff is derived from AssignedAt.
	DueAt time.Time

	Status               Status
	MissedPenaltyApplied bool
	MissedAt             *time.Time
}

func (t Task) HasAssignedAt() bool {
	return !t.AssignedAt.IsZero()
}

// AwaitingMissedCheck is true for tasks the missed sweep still has to look at.
func (t Task) AwaitingMissedCheck() bool {
	return t.Status == StatusPending && !t.MissedPenaltyApplied
}
