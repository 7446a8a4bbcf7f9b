package scoresrvc

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/user"
)

type PerformanceRow struct {
	UserID         string     `json:"user_id"`
	Name           string     `json:"name"`
	TotalTasks     int        `json:"total_tasks"`
	SubmittedTasks int        `json:"submitted_tasks"`
	MissedTasks    int        `json:"missed_tasks"`
	PendingTasks   int        `json:"pending_tasks"`
	Score          int        `json:"score"`
	AvgScoreDelta  float64    `json:"avg_score_delta"`
	LastSubmission *time.Time `json:"last_submission"`
}

// Performance summarizes every contributor's assignments and submissions.
// Score is the stored aggregate, so it includes missed penalties.
func (s *ScoreSrvc) Performance(ctx context.Context) ([]PerformanceRow, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	tasks, err := s.tasks.ListTasks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	all, err := s.subms.ListSubms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	tasksByUser := make(map[string][]task.Task)
	for _, t := range tasks {
		tasksByUser[t.AssignedTo] = append(tasksByUser[t.AssignedTo], t)
	}
	submsByUser := subm.GroupByUser(all)

	rows := make([]PerformanceRow, 0, len(users))
	for _, u := range users {
		if u.Role != user.RoleContributor {
			continue
		}
		row := PerformanceRow{
			UserID: u.ID,
			Name:   u.Name,
			Score:  u.Score,
		}
		for _, t := range tasksByUser[u.ID] {
			row.TotalTasks++
			switch t.Status {
			case task.StatusSubmitted:
				row.SubmittedTasks++
			case task.StatusMissed:
				row.MissedTasks++
			case task.StatusPending:
				row.PendingTasks++
			}
		}

		subms := submsByUser[u.ID]
		if len(subms) > 0 {
			avg := float64(subm.SumScoreDeltas(subms)) / float64(len(subms))
			row.AvgScoreDelta = math.Round(avg*100) / 100
		}
		for _, sb := range subms {
			if row.LastSubmission == nil || sb.SubmittedAt.After(*row.LastSubmission) {
				at := sb.SubmittedAt
				row.LastSubmission = &at
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
