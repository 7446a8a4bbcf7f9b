package subm

import "time"

// Submission records a link to completed work for a task and the score
// delta it earned. IsLate marks a submission made after the task's due
// date; it does not affect ScoreDelta.
type Submission struct {
	ID             string
	TaskID         string
	UserID         string
	AnswerLink     string
	SubmittedAt    time.Time
	WorkingMinutes int
	ScoreDelta     int
	IsLate         bool
}
