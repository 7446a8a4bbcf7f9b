package httpjson_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qacker/backend/httpjson"
	"github.com/qacker/backend/srvcerror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func decode(t *testing.T, rec *httptest.ResponseRecorder) httpjson.JsonResponse {
	t.Helper()
	var resp httpjson.JsonResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", srvcerror.NewValidation("bad_input", "bad"), http.StatusBadRequest, "bad_input"},
		{"validation with status", srvcerror.NewValidation("nope", "no").SetHttpStatusCode(http.StatusForbidden), http.StatusForbidden, "nope"},
		{"store failure", srvcerror.ErrStore(errors.New("timeout")), http.StatusServiceUnavailable, srvcerror.ErrCodeStoreUnavailable},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, srvcerror.ErrCodeInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			httpjson.HandleError(discard, rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decode(t, rec)
			assert.Equal(t, "error", resp.Status)
			assert.Equal(t, tt.wantCode, resp.ErrCode)
		})
	}
}

func TestDecodeJsonBody(t *testing.T) {
	var dst struct {
		Link string `json:"link"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"link":"https://x"}`))
	rec := httptest.NewRecorder()
	assert.True(t, httpjson.DecodeJsonBody(rec, r, &dst))
	assert.Equal(t, "https://x", dst.Link)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"link":1}`))
	rec = httptest.NewRecorder()
	assert.False(t, httpjson.DecodeJsonBody(rec, r, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, httpjson.ErrCodeInvalidBody, decode(t, rec).ErrCode)
}
