package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"DF-DOCGEN/internal/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorBody(t *testing.T, err error) (int, map[string]string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRespondErrorMasksServerFailures(t *testing.T) {
	driverErr := errors.New("UNIQUE constraint failed: documents.id")
	for _, tc := range []struct {
		err  error
		kind string
	}{
		{fmt.Errorf("%w: %w", apperrors.ErrPersistence, driverErr), "persistence"},
		{fmt.Errorf("substitute: %w", apperrors.ErrAnchorNotFound), "anchor_not_found"},
		{driverErr, "internal"},
	} {
		status, body := errorBody(t, tc.err)
		assert.Equal(t, http.StatusInternalServerError, status, tc.kind)
		assert.Equal(t, tc.kind, body["kind"])
		assert.Equal(t, "internal server error", body["error"])
		assert.NotContains(t, body["error"], "UNIQUE")
	}
}

func TestRespondErrorKeepsClientMessages(t *testing.T) {
	status, body := errorBody(t, &apperrors.MissingAnchorValueError{Anchor: "CaseNumber"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "missing_anchor_value", body["kind"])
	assert.Contains(t, body["error"], "CaseNumber")

	status, body = errorBody(t, fmt.Errorf("%w: gotenberg returned 503", apperrors.ErrRender))
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "gotenberg returned 503")
}
