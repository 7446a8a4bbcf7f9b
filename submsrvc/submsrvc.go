package submsrvc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qacker/backend/logger"
	"github.com/qacker/backend/scoreledger"
	"github.com/qacker/backend/scoring"
	"github.com/qacker/backend/subm"
	"github.com/qacker/backend/task"
	"github.com/qacker/backend/worktime"
)

type TaskRepoFacade interface {
	GetTask(ctx context.Context, id string) (task.Task, error)
	MarkSubmitted(ctx context.Context, id string) error
}

type LedgerFacade interface {
	CreditSubmission(ctx context.Context, userID, taskID, submID string, delta int) (scoreledger.Entry, error)
}

// SubmissionSrvc records answer links and turns turnaround time into score.
type SubmissionSrvc struct {
	tasks    TaskRepoFacade
	subms    subm.Repo
	ledger   LedgerFacade
	calendar worktime.Calendar
	now      func() time.Time
}

func NewSubmissionSrvc(
	tasks TaskRepoFacade,
	subms subm.Repo,
	ledger LedgerFacade,
	calendar worktime.Calendar,
) *SubmissionSrvc {
	return &SubmissionSrvc{
		tasks:    tasks,
		subms:    subms,
		ledger:   ledger,
		calendar: calendar,
		now:      time.Now,
	}
}

func (s *SubmissionSrvc) WithClock(now func() time.Time) *SubmissionSrvc {
	s.now = now
	return s
}

type SubmitAnswerParams struct {
	TaskID       string
	Link         string
	ActingUserID string
}

// SubmitAnswer loads the task and records the submission for it.
func (s *SubmissionSrvc) SubmitAnswer(ctx context.Context, p SubmitAnswerParams) (subm.Submission, error) {
	t, err := s.tasks.GetTask(ctx, p.TaskID)
	if err != nil {
		return subm.Submission{}, fmt.Errorf("failed to get task: %w", err)
	}
	return s.Record(ctx, t, p.Link, p.ActingUserID)
}

// Record validates, scores and persists a submission, then marks the task
// submitted and credits the author. The three writes are not atomic: if a
// later write fails the earlier ones stay in place and the error is returned.
func (s *SubmissionSrvc) Record(ctx context.Context, t task.Task, link string, actingUserID string) (subm.Submission, error) {
	switch t.Status {
	case task.StatusMissed:
		return subm.Submission{}, ErrTaskMissed()
	case task.StatusSubmitted:
		return subm.Submission{}, ErrTaskAlreadySubmitted()
	case task.StatusPending:
	default:
		return subm.Submission{}, task.ErrTaskNotPending()
	}
	if t.AssignedTo != actingUserID {
		return subm.Submission{}, ErrTaskNotAssignedToUser()
	}
	link = strings.TrimSpace(link)
	if link == "" {
		return subm.Submission{}, ErrAnswerLinkEmpty()
	}
	if !t.HasAssignedAt() {
		return subm.Submission{}, ErrAssignedAtMissing()
	}

	submittedAt := s.now()
	minutes := s.calendar.WorkingMinutesBetween(t.AssignedAt, submittedAt)
	entity := subm.Submission{
		ID:             uuid.NewString(),
		TaskID:         t.ID,
		UserID:         actingUserID,
		AnswerLink:     link,
		SubmittedAt:    submittedAt,
		WorkingMinutes: minutes,
		ScoreDelta:     scoring.ResolveScore(minutes),
		IsLate:         !t.DueAt.IsZero() && submittedAt.After(t.DueAt),
	}

	log := logger.FromContext(ctx).With(
		slog.String("task_id", t.ID),
		slog.String("subm_id", entity.ID))

	if err := s.subms.StoreSubm(ctx, entity); err != nil {
		return subm.Submission{}, fmt.Errorf("failed to store submission: %w", err)
	}

	if err := s.tasks.MarkSubmitted(ctx, t.ID); err != nil {
		log.Error("submission stored but task not marked submitted", slog.Any("error", err))
		return subm.Submission{}, fmt.Errorf("failed to mark task submitted: %w", err)
	}

	if _, err := s.ledger.CreditSubmission(ctx, actingUserID, t.ID, entity.ID, entity.ScoreDelta); err != nil {
		log.Error("task submitted but score not credited", slog.Any("error", err))
		return subm.Submission{}, err
	}

	log.Info("answer submitted",
		slog.Int("working_minutes", entity.WorkingMinutes),
		slog.Int("score_delta", entity.ScoreDelta),
		slog.Bool("is_late", entity.IsLate))

	return entity, nil
}

func (s *SubmissionSrvc) ListUserSubms(ctx context.Context, userID string) ([]subm.Submission, error) {
	return s.subms.ListSubmsByUser(ctx, userID)
}
