package scoresrvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/srvcerror"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/user"
)

type RebuildRule string

const (
	// RebuildAll sums every submission a user ever made.
	RebuildAll RebuildRule = "all"
	// RebuildLatestPerTask counts only the latest submission per task.
	RebuildLatestPerTask RebuildRule = "latest"
)

const ErrCodeUnknownRebuildRule = "unknown_rebuild_rule"

func ErrUnknownRebuildRule() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeUnknownRebuildRule,
		"rebuild rule must be \"all\" or \"latest\"",
	)
}

func ParseRebuildRule(s string) (RebuildRule, error) {
	switch RebuildRule(s) {
	case "", RebuildAll:
		return RebuildAll, nil
	case RebuildLatestPerTask:
		return RebuildLatestPerTask, nil
	}
	return "", ErrUnknownRebuildRule()
}

type RebuildResult struct {
	Rule   RebuildRule    `json:"rule"`
	Scores map[string]int `json:"scores"`
}

// RebuildUserScores overwrites the score of every user with submissions by
// the plain sum of their score deltas. Missed penalties are not part of the
// sum, so a rebuild forgets them. Users without submissions are untouched.
func (s *ScoreSrvc) RebuildUserScores(ctx context.Context) error {
	_, err := s.Rebuild(ctx, RebuildAll)
	return err
}

// RebuildUserScoresLatestPerTask works like RebuildUserScores but counts only
// the latest submission of each task.
func (s *ScoreSrvc) RebuildUserScoresLatestPerTask(ctx context.Context) error {
	_, err := s.Rebuild(ctx, RebuildLatestPerTask)
	return err
}

func (s *ScoreSrvc) Rebuild(ctx context.Context, rule RebuildRule) (RebuildResult, error) {
	if rule != RebuildAll && rule != RebuildLatestPerTask {
		return RebuildResult{}, ErrUnknownRebuildRule()
	}

	all, err := s.subms.ListSubms(ctx)
	if err != nil {
		return RebuildResult{}, fmt.Errorf("failed to list submissions: %w", err)
	}

	byUser := subm.GroupByUser(all)
	userIDs := slices.Sorted(maps.Keys(byUser))

	log := logger.FromContext(ctx)
	res := RebuildResult{Rule: rule, Scores: make(map[string]int, len(userIDs))}
	var errs []error
	for _, userID := range userIDs {
		subms := byUser[userID]
		if rule == RebuildLatestPerTask {
			subms = subm.LatestPerTask(subms)
		}
		total := subm.SumScoreDeltas(subms)

		if _, err := s.ledger.Overwrite(ctx, userID, total, string(rule)); err != nil {
			if srvcerror.HasCode(err, user.ErrCodeUserNotFound) {
				log.Warn("submissions reference unknown user", slog.String("user_id", userID))
				continue
			}
			errs = append(errs, err)
			continue
		}
		res.Scores[userID] = total
	}

	log.Info("user scores rebuilt",
		slog.String("rule", string(rule)),
		slog.Int("users", len(res.Scores)))

	return res, errors.Join(errs...)
}
