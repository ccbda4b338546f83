package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iwvelando/plan-weights/internal/plan"
	"github.com/iwvelando/plan-weights/pkg/constants"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "test", name))
	require.NoError(t, err)
	return data
}

func post(t *testing.T, handler http.Handler, target, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleValidateYAML(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "1.0.0")

	rr := post(t, handler, "/api/plan/validate", "application/yaml", readFixture(t, "valid_plan.yaml"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Valid)
	assert.Empty(t, resp.Errors)
	assert.NotEmpty(t, resp.Totals)
	assert.NotEmpty(t, resp.Duration)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestHandleValidateJSON(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "")

	rr := post(t, handler, "/api/plan/validate", "application/json", readFixture(t, "unbalanced_plan.json"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Valid  bool                `json:"valid"`
		Errors map[string][]string `json:"errors"`
		Issues []struct {
			Path    string `json:"path"`
			Kind    string `json:"kind"`
			Message string `json:"message"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Valid)
	assert.Len(t, resp.Issues, 4)
	assert.Equal(t,
		[]string{"main task weights must sum to 100%, current total is 90.00%"},
		resp.Errors["objectives[0].strategicActions[0].metrics[0].mainTasks"])
	assert.Equal(t,
		[]string{"grant budget amount is required when the budget source is grant"},
		resp.Errors["objectives[0].grantBudgetAmount"])
}

func TestHandleValidateKeepsRequestID(t *testing.T) {
	handler := NewHandler(nil, 0, "")
	req := httptest.NewRequest(http.MethodPost, "/api/plan/validate", bytes.NewReader(readFixture(t, "unbalanced_plan.json")))
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestHandleValidateErrors(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 64, "")

	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"Empty body", "application/json", "", http.StatusBadRequest},
		{"Malformed JSON", "application/json", "{", http.StatusBadRequest},
		{"Malformed YAML", "application/yaml", "objectives: [", http.StatusBadRequest},
		{"Too large", "application/json", `{"userName":"` + strings.Repeat("x", 128) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, handler, "/api/plan/validate", tt.contentType, []byte(tt.body))
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp["error"])
		})
	}
}

func TestHandleTotals(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "")

	rr := post(t, handler, "/api/plan/totals", "application/json", readFixture(t, "unbalanced_plan.json"))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Totals []struct {
			Path     string  `json:"path"`
			Sum      float64 `json:"sum"`
			Balanced bool    `json:"balanced"`
		} `json:"totals"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Totals)
	assert.Equal(t, "objectives", resp.Totals[0].Path)
	assert.Equal(t, 80.0, resp.Totals[0].Sum)
	assert.False(t, resp.Totals[0].Balanced)
}

func normalizeBody(t *testing.T, extra map[string]interface{}) []byte {
	t.Helper()
	var p map[string]interface{}
	require.NoError(t, json.Unmarshal(readFixture(t, "unbalanced_plan.json"), &p))
	payload := map[string]interface{}{"plan": p}
	for k, v := range extra {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestHandleNormalizeScope(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "")

	rr := post(t, handler, "/api/plan/normalize", "application/json", normalizeBody(t, map[string]interface{}{"scope": "objectives"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp normalizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "objectives", resp.Scope)
	assert.Equal(t, 80.0, resp.Total)
	assert.Equal(t, map[string]string{"objectives[0]": "62.50", "objectives[1]": "37.50"}, resp.Updates)
	assert.Equal(t, plan.Weight("62.50"), resp.Plan.Objectives[0].Weight)
	assert.Equal(t, plan.Weight("37.50"), resp.Plan.Objectives[1].Weight)
}

func TestHandleNormalizeBranch(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "")

	branch := "objectives[0].strategicActions[0].metrics[0].mainTasks"
	rr := post(t, handler, "/api/plan/normalize", "application/json", normalizeBody(t, map[string]interface{}{"branch": branch}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp normalizeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, branch, resp.Branch)
	assert.Equal(t, 90.0, resp.Total)
	assert.Equal(t, map[string]string{branch + "[0]": "66.67", branch + "[1]": "33.33"}, resp.Updates)
}

func TestHandleNormalizeErrors(t *testing.T) {
	handler := NewHandler(zap.NewNop(), constants.DefaultMaxUploadSizeBytes, "")

	tests := []struct {
		name string
		body []byte
	}{
		{"Missing plan", []byte(`{"scope":"objectives"}`)},
		{"Malformed", []byte(`{"plan":`)},
		{"Unknown scope", normalizeBody(t, map[string]interface{}{"scope": "everything"})},
		{"Bad branch", normalizeBody(t, map[string]interface{}{"branch": "objectives[0].metrics"})},
		{"Branch out of range", normalizeBody(t, map[string]interface{}{"branch": "objectives[9].strategicActions"})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := post(t, handler, "/api/plan/normalize", "application/json", tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestHandleVersion(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 0, " 2.3.4 ")

	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "2.3.4", resp["version"])
}

func TestMethodNotAllowed(t *testing.T) {
	handler := NewHandler(zap.NewNop(), 0, "")

	for _, target := range []string{"/api/plan/validate", "/api/plan/totals", "/api/plan/normalize"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, target)
	}

	rr := post(t, handler, "/api/version", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
