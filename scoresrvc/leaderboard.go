package scoresrvc

import (
	"context"
	"fmt"
	"sort"

	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/user"
)

type LeaderboardRow struct {
	Rank       int    `json:"rank"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}

// Leaderboard ranks contributors by the sum of the latest submission per
// task. Ties are ordered by name and still get distinct ranks.
func (s *ScoreSrvc) Leaderboard(ctx context.Context) ([]LeaderboardRow, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	all, err := s.subms.ListSubms(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	byUser := subm.GroupByUser(all)

	rows := make([]LeaderboardRow, 0, len(users))
	for _, u := range users {
		if u.Role != user.RoleContributor {
			continue
		}
		rows = append(rows, LeaderboardRow{
			UserID:     u.ID,
			Name:       u.Name,
			TotalScore: subm.SumScoreDeltas(subm.LatestPerTask(byUser[u.ID])),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TotalScore != rows[j].TotalScore {
			return rows[i].TotalScore > rows[j].TotalScore
		}
		return rows[i].Name < rows[j].Name
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}
