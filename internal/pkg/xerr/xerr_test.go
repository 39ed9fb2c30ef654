package xerr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestNotFoundErrorMatchesSentinels(t *testing.T) {
	err := NewNotFound("file", []uint64{3, 1})
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, ErrFileNotFound)
	require.False(t, errors.Is(err, ErrLabelNotFound))
	require.Equal(t, []uint64{1, 3}, err.IDs)

	byName := NewNotFoundNames("user", []string{"zed", "amy"})
	require.ErrorIs(t, byName, ErrUserNotFound)
	require.Equal(t, []string{"amy", "zed"}, byName.Names)
}

func TestConflictErrorSortsItems(t *testing.T) {
	err := NewConflict("label", "标签名称已被占用", []string{"dog", "cat"})
	require.ErrorIs(t, err, ErrConflict)
	require.Equal(t, []string{"cat", "dog"}, err.Items)
	require.Contains(t, err.Error(), "cat, dog")
}

func TestForbiddenErrorSortsIDs(t *testing.T) {
	err := NewForbiddenLabels([]uint64{9, 2})
	require.ErrorIs(t, err, ErrForbidden)
	require.Equal(t, []uint64{2, 9}, err.LabelIDs)
}

func TestWrappedSentinelKeepsChain(t *testing.T) {
	err := fmt.Errorf("批量删除文件不能为空: %w", ErrInvalidParams)
	require.ErrorIs(t, err, ErrInvalidParams)
}

func handle(t *testing.T, err error) (int, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	HandleError(c, err)

	var body Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHandleErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		httpStatus int
		code       int
	}{
		{"invalid params", fmt.Errorf("bad: %w", ErrInvalidParams), http.StatusBadRequest, InvalidParamsCode},
		{"duplicate id", fmt.Errorf("dup: %w", ErrDuplicateID), http.StatusBadRequest, DuplicateIDCode},
		{"unauthorized", ErrTokenInvalid, http.StatusUnauthorized, TokenInvalidCode},
		{"forbidden", NewForbiddenLabels([]uint64{1}), http.StatusForbidden, ForbiddenCode},
		{"file not found", NewNotFound("file", []uint64{1}), http.StatusNotFound, FileNotFoundCode},
		{"label not found", NewNotFound("label", []uint64{1}), http.StatusNotFound, LabelNotFoundCode},
		{"resource not found", NewNotFoundNames("resource", []string{"u"}), http.StatusNotFound, ResourceNotFoundCode},
		{"conflict", NewConflict("label", "taken", []string{"cat"}), http.StatusConflict, ConflictCode},
		{"database", fmt.Errorf("find files: %w", ErrDatabaseError), http.StatusInternalServerError, DatabaseErrorCode},
		{"detection", fmt.Errorf("detect: %w", ErrDetectionError), http.StatusInternalServerError, DetectionErrorCode},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, InternalServerErrorCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := handle(t, tc.err)
			require.Equal(t, tc.httpStatus, status)
			require.Equal(t, tc.code, body.Code)
		})
	}
}

func TestHandleErrorEnumeratesItems(t *testing.T) {
	_, body := handle(t, NewNotFound("label", []uint64{42, 7}))
	require.Contains(t, body.Message, "[7 42]")
}
