package http

import (
	"time"

	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/user"
)

type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Score int    `json:"score"`
}

type Task struct {
	ID                   string     `json:"id"`
	QuestionRef          string     `json:"question_ref"`
	Topic                string     `json:"topic,omitempty"`
	AnswerDraft          string     `json:"answer_draft,omitempty"`
	AssignedTo           string     `json:"assigned_to"`
	AssignedBy           string     `json:"assigned_by"`
	AssignedAt           *time.Time `json:"assigned_at"`
	DueAt                *time.Time `json:"due_at"`
	MissedCutoff         *time.Time `json:"missed_cutoff,omitempty"`
	Status               string     `json:"status"`
	MissedPenaltyApplied bool       `json:"missed_penalty_applied"`
	MissedAt             *time.Time `json:"missed_at,omitempty"`
}

type Submission struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	UserID         string    `json:"user_id"`
	AnswerLink     string    `json:"answer_link"`
	SubmittedAt    time.Time `json:"submitted_at"`
	WorkingMinutes int       `json:"working_minutes"`
	ScoreDelta     int       `json:"score_delta"`
	IsLate         bool      `json:"is_late"`
}

type Dashboard struct {
	User           User   `json:"user"`
	PendingTasks   []Task `json:"pending_tasks"`
	SubmittedCount int    `json:"submitted_count"`
	MissedCount    int    `json:"missed_count"`
}

func mapUser(u user.User) User {
	return User{
		ID:    u.ID,
		Name:  u.Name,
		Role:  string(u.Role),
		Score: u.Score,
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func (httpserver *HttpServer) mapTask(t task.Task) Task {
	res := Task{
		ID:                   t.ID,
		QuestionRef:          t.QuestionRef,
		Topic:                t.Topic,
		AnswerDraft:          t.AnswerDraft,
		AssignedTo:           t.AssignedTo,
		AssignedBy:           t.AssignedBy,
		AssignedAt:           optionalTime(t.AssignedAt),
		DueAt:                optionalTime(t.DueAt),
		Status:               string(t.Status),
		MissedPenaltyApplied: t.MissedPenaltyApplied,
		MissedAt:             t.MissedAt,
	}
	if t.Status == task.StatusPending && t.HasAssignedAt() {
		cutoff := httpserver.calendar.MissedCutoff(t.AssignedAt)
		res.MissedCutoff = &cutoff
	}
	return res
}

func (httpserver *HttpServer) mapTasks(tasks []task.Task) []Task {
	res := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, httpserver.mapTask(t))
	}
	return res
}

func mapSubm(s subm.Submission) Submission {
	return Submission{
		ID:             s.ID,
		TaskID:         s.TaskID,
		UserID:         s.UserID,
		AnswerLink:     s.AnswerLink,
		SubmittedAt:    s.SubmittedAt,
		WorkingMinutes: s.WorkingMinutes,
		ScoreDelta:     s.ScoreDelta,
		IsLate:         s.IsLate,
	}
}

func mapSubms(subms []subm.Submission) []Submission {
	res := make([]Submission, 0, len(subms))
	for _, s := range subms {
		res = append(res, mapSubm(s))
	}
	return res
}
