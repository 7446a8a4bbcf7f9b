package submsrvc

import (
	"net/http"

	"github.com/qacker/backend/srvcerror"
)

const ErrCodeAnswerLinkEmpty = "answer_link_empty"

func ErrAnswerLinkEmpty() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeAnswerLinkEmpty,
		"paste the answer link",
	)
}

const ErrCodeTaskMissed = "task_missed"

func ErrTaskMissed() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeTaskMissed,
		"task deadline was missed, it can no longer be submitted",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeTaskAlreadySubmitted = "task_already_submitted"

func ErrTaskAlreadySubmitted() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeTaskAlreadySubmitted,
		"task has already been submitted",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeAssignedAtMissing = "task_assigned_at_missing"

func ErrAssignedAtMissing() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeAssignedAtMissing,
		"task has no assignment time, score cannot be computed",
	)
}

const ErrCodeTaskNotAssignedToUser = "task_not_assigned_to_user"

func ErrTaskNotAssignedToUser() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeTaskNotAssignedToUser,
		"task is assigned to someone else",
	).SetHttpStatusCode(http.StatusForbidden)
}
