package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/metrics"
	"deep-agent/pkg/overrides"
)

func newTestRouter(t *testing.T) (*mux.Router, *database.SQLiteDB) {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	service, err := overrides.NewService(db, nil)
	require.NoError(t, err)

	source, err := metrics.NewSQLiteSource(db)
	require.NoError(t, err)

	evaluator, err := evaluation.NewEvaluator(source, evaluation.DefaultEvaluatorConfig(), nil)
	require.NoError(t, err)

	trigger, err := evaluation.NewTrigger(evaluator, db, nil)
	require.NoError(t, err)

	router := mux.NewRouter()
	OverrideRoutes(router, service)
	EvaluationRoutes(router, db, evaluator, trigger)
	return router, db
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestOverrideRoutes_SaveAndGet(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "POST", "/api/overrides", map[string]interface{}{
		"agent_name":       "research_agent",
		"improved_prompt":  "be thorough",
		"change_reason":    "quality below threshold",
		"confidence_score": 0.85,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = doJSON(t, router, "GET", "/api/overrides/research_agent", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var override database.PromptOverride
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &override))
	assert.Equal(t, "be thorough", override.ImprovedPrompt)
	assert.True(t, override.IsActive)
}

func TestOverrideRoutes_SaveValidationFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "POST", "/api/overrides", map[string]interface{}{
		"agent_name": "research_agent",
		// improved_prompt missing
		"change_reason": "test",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestOverrideRoutes_GetMissingIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "GET", "/api/overrides/research_agent", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestOverrideRoutes_DeleteLifecycle(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, "POST", "/api/overrides", map[string]interface{}{
		"agent_name":       "research_agent",
		"improved_prompt":  "be thorough",
		"change_reason":    "test",
		"confidence_score": 0.8,
	})

	resp := doJSON(t, router, "DELETE", "/api/overrides/research_agent", nil)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = doJSON(t, router, "DELETE", "/api/overrides/research_agent", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestOverrideRoutes_List(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, prompt := range []string{"v1", "v2"} {
		doJSON(t, router, "POST", "/api/overrides", map[string]interface{}{
			"agent_name":       "research_agent",
			"improved_prompt":  prompt,
			"change_reason":    "test",
			"confidence_score": 0.8,
		})
	}

	resp := doJSON(t, router, "GET", "/api/overrides", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var payload struct {
		Count     int                       `json:"count"`
		Overrides []database.PromptOverride `json:"overrides"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	assert.Equal(t, 2, payload.Count)
}

func TestEvaluationRoutes_RecordInteraction(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "POST", "/api/interactions", map[string]interface{}{
		"agent_name":       "research_agent",
		"success":          true,
		"duration_seconds": 1.2,
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var record database.InteractionRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	assert.NotEmpty(t, record.SessionID, "missing session id should be generated")
}

func TestEvaluationRoutes_RecordInteractionRequiresAgent(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "POST", "/api/interactions", map[string]interface{}{
		"success": true,
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEvaluationRoutes_Evaluate(t *testing.T) {
	router, _ := newTestRouter(t)

	doJSON(t, router, "POST", "/api/interactions", map[string]interface{}{
		"agent_name":       "research_agent",
		"success":          true,
		"duration_seconds": 1.0,
	})

	resp := doJSON(t, router, "POST", "/api/agents/research_agent/evaluate", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var result evaluation.EvaluationResult
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.Equal(t, "research_agent", result.AgentName)
	assert.Len(t, result.CriteriaEvaluation, 4)
}

func TestEvaluationRoutes_RefinementCheck(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "GET", "/api/agents/research_agent/refinement-check", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var decision evaluation.TriggerDecision
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &decision))
	// Empty store: score below threshold and no prior refinement
	assert.True(t, decision.ShouldTrigger)
}

func TestEvaluationRoutes_Trends(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "GET", "/api/agents/research_agent/trends?metric=error_rate&days=3", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var report evaluation.TrendReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Equal(t, 3, report.WindowDays)
}

func TestEvaluationRoutes_TrendsUnknownMetric(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "GET", "/api/agents/research_agent/trends?metric=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEvaluationRoutes_SystemHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	resp := doJSON(t, router, "GET", "/api/system/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var report evaluation.HealthReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
	assert.Len(t, report.Components, 4)
}
