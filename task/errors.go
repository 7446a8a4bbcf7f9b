package task

import (
	"net/http"

	"github.com/qacker/backend/srvcerror"
)

const ErrCodeTaskNotFound = "task_not_found"

func ErrTaskNotFound() *srvcerror.Error {
	return srvcerror.NewDependency(
		ErrCodeTaskNotFound,
		"task not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeTaskExists = "task_exists"

func ErrTaskExists() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeTaskExists,
		"task with this id already exists",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeTaskNotPending = "task_not_pending"

func ErrTaskNotPending() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeTaskNotPending,
		"task is no longer pending",
	).SetHttpStatusCode(http.StatusConflict)
}
