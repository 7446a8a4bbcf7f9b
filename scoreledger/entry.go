package scoreledger

import "time"

type Kind string

const (
	KindSubmission    Kind = "submission"
	KindMissedPenalty Kind = "missed_penalty"
	KindRebuild       Kind = "rebuild"
)

// Entry is one line of the score audit trail. Increments carry Delta,
// rebuild overwrites carry NewScore and the rule that produced it.
type Entry struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Kind         Kind      `json:"kind"`
	Delta        int       `json:"delta"`
	NewScore     int       `json:"new_score"`
	TaskID       string    `json:"task_id,omitempty"`
	SubmissionID string    `json:"submission_id,omitempty"`
	Rule         string    `json:"rule,omitempty"`
	At           time.Time `json:"at"`
}
