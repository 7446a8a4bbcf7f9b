package http

import (
	"context"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/srvcerror"
	"github.com/qacker/backend/user"
	"github.com/qacker/backend/user/auth"
)

type ctxKey string

const ctxUserKey ctxKey = "actingUser"

const ErrCodeUnauthenticated = "unauthenticated"

func ErrUnauthenticated() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeUnauthenticated,
		"a valid bearer token is required",
	).SetHttpStatusCode(http.StatusUnauthorized)
}

const ErrCodeAdminOnly = "admin_only"

func ErrAdminOnly() *srvcerror.Error {
	return srvcerror.NewValidation(
		ErrCodeAdminOnly,
		"this endpoint is for admins",
	).SetHttpStatusCode(http.StatusForbidden)
}

// requireUser resolves the token's subject to a stored user. A token for a
// user that no longer exists is treated like no token.
func (httpserver *HttpServer) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := httplog.LogEntry(r.Context())

		claims := auth.ClaimsFromContext(r.Context())
		if claims == nil {
			httpjson.HandleError(log, w, ErrUnauthenticated())
			return
		}

		u, err := httpserver.users.GetUser(r.Context(), claims.UserID())
		if err != nil {
			if srvcerror.HasCode(err, user.ErrCodeUserNotFound) {
				httpjson.HandleError(log, w, ErrUnauthenticated())
				return
			}
			httpjson.HandleError(log, w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (httpserver *HttpServer) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !actingUser(r).IsAdmin() {
			httpjson.HandleError(httplog.LogEntry(r.Context()), w, ErrAdminOnly())
			return
		}
		next.ServeHTTP(w, r)
	})
}

func actingUser(r *http.Request) user.User {
	u, _ := r.Context().Value(ctxUserKey).(user.User)
	return u
}
