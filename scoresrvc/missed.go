package scoresrvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/qacker/backend/logger"
)

type SweepResult struct {
	Scanned   int `json:"scanned"`
	Penalized int `json:"penalized"`
	Skipped   int `json:"skipped"`
}

// CheckAndApplyMissedPenalties marks every pending task whose cutoff has
// passed as missed and charges its assignee the penalty. The task's guard is
// flipped with a conditional write before the score is touched, so repeated
// or concurrent sweeps penalize a task at most once. Concurrent callers in
// this process share a single sweep, which outlives the cancellation of
// whichever caller started it.
func (s *ScoreSrvc) CheckAndApplyMissedPenalties(ctx context.Context) (SweepResult, error) {
	sweepCtx := context.WithoutCancel(ctx)
	res, err, _ := s.sweeps.Do("missed", func() (any, error) {
		return s.sweepMissed(sweepCtx)
	})
	if res == nil {
		return SweepResult{}, err
	}
	return res.(SweepResult), err
}

func (s *ScoreSrvc) sweepMissed(ctx context.Context) (SweepResult, error) {
	log := logger.FromContext(ctx)

	tasks, err := s.tasks.ListAwaitingMissedCheck(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("failed to list pending tasks: %w", err)
	}

	now := s.now()
	var res SweepResult
	var errs []error
	for _, t := range tasks {
		if !t.AwaitingMissedCheck() {
			continue
		}
		res.Scanned++

		if !t.HasAssignedAt() {
			log.Warn("pending task has no assignment time", slog.String("task_id", t.ID))
			res.Skipped++
			continue
		}

		cutoff := s.calendar.MissedCutoff(t.AssignedAt)
		if !t.DueAt.IsZero() && cutoff.After(t.DueAt) {
			log.Debug("missed cutoff falls after due date",
				slog.String("task_id", t.ID),
				slog.Time("cutoff", cutoff),
				slog.Time("due_at", t.DueAt))
		}
		if !now.After(cutoff) {
			continue
		}

		applied, err := s.tasks.MarkMissed(ctx, t.ID, now)
		if err != nil {
			log.Error("failed to mark task missed", slog.String("task_id", t.ID), slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		if !applied {
			// another sweep got there first
			continue
		}

		if _, err := s.ledger.ChargeMissedPenalty(ctx, t.AssignedTo, t.ID); err != nil {
			log.Error("task marked missed but penalty not charged",
				slog.String("task_id", t.ID),
				slog.String("user_id", t.AssignedTo),
				slog.Any("error", err))
			errs = append(errs, err)
			continue
		}
		res.Penalized++
	}

	if res.Penalized > 0 {
		log.Info("missed task sweep finished",
			slog.Int("scanned", res.Scanned),
			slog.Int("penalized", res.Penalized))
	}

	return res, errors.Join(errs...)
}
