package scoreledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/scoring"
)

// ScoreStore is the persisted home of the per-user aggregate.
type ScoreStore interface {
	AddScore(ctx context.Context, userID string, delta int) (int, error)
	SetScore(ctx context.Context, userID string, score int) error
}

type AuditSink interface {
	Append(ctx context.Context, e Entry) error
}

type AuditReader interface {
	ListEntries(ctx context.Context, userID string) ([]Entry, error)
}

// Ledger is the only writer of user scores. Increments are atomic in the
// store; Overwrite exists for reconciliation. Every change is appended to
// the audit sinks after it was applied.
type Ledger struct {
	store ScoreStore
	sinks []AuditSink
	now   func() time.Time
}

func NewLedger(store ScoreStore, sinks ...AuditSink) *Ledger {
	return &Ledger{
		store: store,
		sinks: sinks,
		now:   time.Now,
	}
}

// WithClock replaces the time source used to stamp entries.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// CreditSubmission adds a submission's score delta to its author.
func (l *Ledger) CreditSubmission(ctx context.Context, userID, taskID, submID string, delta int) (Entry, error) {
	newScore, err := l.store.AddScore(ctx, userID, delta)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to credit submission %s: %w", submID, err)
	}
	e := l.newEntry(userID, KindSubmission)
	e.Delta = delta
	e.NewScore = newScore
	e.TaskID = taskID
	e.SubmissionID = submID
	l.audit(ctx, e)
	return e, nil
}

// ChargeMissedPenalty subtracts the missed-task penalty from the assignee.
func (l *Ledger) ChargeMissedPenalty(ctx context.Context, userID, taskID string) (Entry, error) {
	newScore, err := l.store.AddScore(ctx, userID, -scoring.MissedPenalty)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to charge missed penalty for task %s: %w", taskID, err)
	}
	e := l.newEntry(userID, KindMissedPenalty)
	e.Delta = -scoring.MissedPenalty
	e.NewScore = newScore
	e.TaskID = taskID
	l.audit(ctx, e)
	return e, nil
}

// Overwrite replaces the stored score with a recomputed value.
func (l *Ledger) Overwrite(ctx context.Context, userID string, score int, rule string) (Entry, error) {
	if err := l.store.SetScore(ctx, userID, score); err != nil {
		return Entry{}, fmt.Errorf("failed to overwrite score of %s: %w", userID, err)
	}
	e := l.newEntry(userID, KindRebuild)
	e.NewScore = score
	e.Rule = rule
	l.audit(ctx, e)
	return e, nil
}

// History returns the audit trail of a user from the first sink that can be read.
func (l *Ledger) History(ctx context.Context, userID string) ([]Entry, error) {
	for _, sink := range l.sinks {
		if reader, ok := sink.(AuditReader); ok {
			return reader.ListEntries(ctx, userID)
		}
	}
	return nil, errors.New("no readable audit sink configured")
}

func (l *Ledger) newEntry(userID string, kind Kind) Entry {
	return Entry{
		ID:     uuid.NewString(),
		UserID: userID,
		Kind:   kind,
		At:     l.now(),
	}
}

// audit never fails the caller: the score change has already happened.
func (l *Ledger) audit(ctx context.Context, e Entry) {
	log := logger.FromContext(ctx)
	for _, sink := range l.sinks {
		if err := sink.Append(ctx, e); err != nil {
			log.Error("failed to append score audit entry",
				slog.String("entry_id", e.ID),
				slog.String("user_id", e.UserID),
				slog.String("kind", string(e.Kind)),
				slog.Any("error", err))
		}
	}
	log.Info("score changed",
		slog.String("user_id", e.UserID),
		slog.String("kind", string(e.Kind)),
		slog.Int("delta", e.Delta),
		slog.Int("new_score", e.NewScore))
}
