package user

import (
	"net/http"

	"github.com/qacker/backend/srvcerror"
)

const ErrCodeUserNotFound = "user_not_found"

func ErrUserNotFound() *srvcerror.Error {
	return srvcerror.NewDependency(
		ErrCodeUserNotFound,
		"user not found",
	).SetHttpStatusCode(http.StatusNotFound)
}

const ErrCodeUserExists = "user_exists"

func ErrUserExists() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeUserExists,
		"user with this id already exists",
	).SetHttpStatusCode(http.StatusConflict)
}

const ErrCodeNameEmpty = "user_name_empty"

func ErrNameEmpty() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeNameEmpty,
		"user name must not be empty",
	)
}

const ErrCodeInvalidRole = "user_role_invalid"

func ErrInvalidRole() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeInvalidRole,
		"role must be admin or contributor",
	)
}
