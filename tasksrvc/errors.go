package tasksrvc

import (
	"net/http"

	"github.com/qacker/backend/srvcerror"
)

const ErrCodeForbidden = "forbidden"

func ErrForbidden() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeForbidden,
		"only admins can do this",
	).SetHttpStatusCode(http.StatusForbidden)
}

const ErrCodeQuestionRefEmpty = "question_ref_empty"

func ErrQuestionRefEmpty() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeQuestionRefEmpty,
		"question link is required",
	)
}

const ErrCodeAssigneeEmpty = "assignee_empty"

func ErrAssigneeEmpty() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeAssigneeEmpty,
		"task must be assigned to a contributor",
	)
}

const ErrCodeDueAtMissing = "due_at_missing"

func ErrDueAtMissing() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeDueAtMissing,
		"due date is required",
	)
}

const ErrCodeAssigneeNotContributor = "assignee_not_contributor"

func ErrAssigneeNotContributor() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeAssigneeNotContributor,
		"tasks can only be assigned to contributors",
	)
}
