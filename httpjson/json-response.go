package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/qacker/backend/srvcerror"
)

type JsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	WriteJson(w, http.StatusOK, data)
}

func WriteJson(w http.ResponseWriter, statusCode int, data any) {
	resp := JsonResponse{
		Status: "success",
		Data:   data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	resp := JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func writeInternalErrorJson(w http.ResponseWriter) {
	WriteErrorJson(w,
		http.StatusText(http.StatusInternalServerError),
		http.StatusInternalServerError,
		srvcerror.ErrCodeInternalServerError)
}

// HandleError writes err as a JSON envelope. Validation errors are the
// caller's fault and logged at debug; store failures and anything that is
// not a service error are logged at error level.
func HandleError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		logger.Error("internal server error", "error", err)
		writeInternalErrorJson(w)
		return
	}

	switch srvcErr.Kind() {
	case srvcerror.KindValidation:
		logger.Debug("rejected request", "code", srvcErr.ErrorCode(), "error", err)
	case srvcerror.KindDependency:
		if srvcErr.HttpStatusCode() >= http.StatusInternalServerError {
			logger.Error("store failure", "code", srvcErr.ErrorCode(), "error", err, "debug", srvcErr.DebugInfo())
		} else {
			logger.Warn("service error", "code", srvcErr.ErrorCode(), "error", err)
		}
	default:
		logger.Error("internal server error", "error", err, "debug", srvcErr.DebugInfo())
	}
	WriteErrorJson(w, srvcErr.Error(), srvcErr.HttpStatusCode(), srvcErr.ErrorCode())
}

// DecodeJsonBody decodes a request body, answering 400 itself on failure.
func DecodeJsonBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteErrorJson(w, "request body is not valid JSON: "+err.Error(), http.StatusBadRequest, ErrCodeInvalidBody)
		return false
	}
	return true
}

const ErrCodeInvalidBody = "invalid_body"
