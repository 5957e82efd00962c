package tools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/metrics"
	"deep-agent/pkg/overrides"
)

func newTestToolset(t *testing.T) (*Toolset, *database.SQLiteDB) {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	overrideService, err := overrides.NewService(db, nil)
	require.NoError(t, err)

	source, err := metrics.NewSQLiteSource(db)
	require.NoError(t, err)

	evaluator, err := evaluation.NewEvaluator(source, evaluation.DefaultEvaluatorConfig(), nil)
	require.NoError(t, err)

	trigger, err := evaluation.NewTrigger(evaluator, db, nil)
	require.NoError(t, err)

	toolset, err := NewToolset(evaluator, trigger, nil, overrideService, db, nil)
	require.NoError(t, err)
	return toolset, db
}

// callJSON runs a tool and decodes its JSON response
func callJSON(t *testing.T, toolset *Toolset, name string, args map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := toolset.Call(context.Background(), name, args)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestNewToolset_RequiresCollaborators(t *testing.T) {
	_, err := NewToolset(nil, nil, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestToolset_NamesAndDefinitions(t *testing.T) {
	toolset, _ := newTestToolset(t)

	names := toolset.Names()
	require.Len(t, names, 12)
	assert.Equal(t, "evaluate_agent_performance", names[0])
	assert.Contains(t, names, "save_system_prompt_override")
	assert.Contains(t, names, "monitor_system_health")

	tools := toolset.Tools()
	require.Len(t, tools, 12)
	for _, tool := range tools {
		assert.Equal(t, "function", tool.Type)
		require.NotNil(t, tool.Function)
		assert.NotEmpty(t, tool.Function.Description)

		schema, ok := tool.Function.Parameters.(map[string]interface{})
		require.True(t, ok, "schema for %s", tool.Function.Name)
		assert.Equal(t, "object", schema["type"])
		assert.NotContains(t, schema, "$schema")
	}
}

func TestToolset_Describe(t *testing.T) {
	toolset, _ := newTestToolset(t)

	assert.NotEmpty(t, toolset.Describe("evaluate_agent_performance"))
	assert.Empty(t, toolset.Describe("no_such_tool"))
}

func TestCall_UnknownTool(t *testing.T) {
	toolset, _ := newTestToolset(t)

	_, err := toolset.Call(context.Background(), "no_such_tool", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
}

func TestCall_EvaluatePerformance(t *testing.T) {
	toolset, db := newTestToolset(t)

	_, err := db.RecordInteraction(context.Background(), &database.RecordInteractionRequest{
		SessionID: "s1", AgentName: "research_agent", Success: true, DurationSec: 1.0,
	})
	require.NoError(t, err)

	payload := callJSON(t, toolset, "evaluate_agent_performance", map[string]interface{}{
		"agent_name": "research_agent",
	})

	assert.Equal(t, true, payload["success"])
	evaluationPayload, ok := payload["evaluation"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "research_agent", evaluationPayload["agent_name"])
}

func TestCall_EvaluatePerformance_UnknownCriterion(t *testing.T) {
	toolset, _ := newTestToolset(t)

	_, err := toolset.Call(context.Background(), "evaluate_agent_performance", map[string]interface{}{
		"agent_name":          "research_agent",
		"evaluation_criteria": []interface{}{"latency"},
	})
	require.Error(t, err)
}

func TestCall_OverrideLifecycle(t *testing.T) {
	toolset, _ := newTestToolset(t)

	// No override yet
	payload := callJSON(t, toolset, "get_system_prompt_override", map[string]interface{}{
		"agent_name": "research_agent",
	})
	assert.Equal(t, false, payload["has_override"])

	// Save one
	payload = callJSON(t, toolset, "save_system_prompt_override", map[string]interface{}{
		"agent_name":      "research_agent",
		"improved_prompt": "be thorough",
		"change_reason":   "quality below threshold",
	})
	assert.Equal(t, true, payload["success"])

	// It is now active
	payload = callJSON(t, toolset, "get_system_prompt_override", map[string]interface{}{
		"agent_name": "research_agent",
	})
	assert.Equal(t, true, payload["has_override"])

	// And listed
	payload = callJSON(t, toolset, "list_system_prompt_overrides", nil)
	assert.Equal(t, float64(1), payload["count"])

	// Remove reverts to the default prompt
	payload = callJSON(t, toolset, "remove_system_prompt_override", map[string]interface{}{
		"agent_name": "research_agent",
	})
	assert.Equal(t, true, payload["removed"])

	payload = callJSON(t, toolset, "get_system_prompt_override", map[string]interface{}{
		"agent_name": "research_agent",
	})
	assert.Equal(t, false, payload["has_override"])
}

func TestCall_SaveOverride_ValidationFailure(t *testing.T) {
	toolset, _ := newTestToolset(t)

	_, err := toolset.Call(context.Background(), "save_system_prompt_override", map[string]interface{}{
		"agent_name": "research_agent",
		// improved_prompt missing
		"change_reason": "test",
	})
	require.Error(t, err)
}

func TestCall_ShouldTriggerRefinement_NoHistory(t *testing.T) {
	toolset, _ := newTestToolset(t)

	payload := callJSON(t, toolset, "should_trigger_system_refinement", map[string]interface{}{
		"agent_name": "research_agent",
	})

	decision, ok := payload["decision"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, decision["should_trigger"])
}

func TestCall_ResearchBestPractices(t *testing.T) {
	toolset, _ := newTestToolset(t)

	payload := callJSON(t, toolset, "research_agent_best_practices", nil)

	assert.Equal(t, float64(3), payload["findings_count"])
}

func TestCall_GenerateImprovedPrompt(t *testing.T) {
	toolset, _ := newTestToolset(t)

	payload := callJSON(t, toolset, "generate_improved_system_prompt", map[string]interface{}{
		"agent_name":          "research_agent",
		"current_prompt":      "You are a research agent.",
		"improvement_targets": []interface{}{"clarity"},
	})

	improved, ok := payload["improved_prompt"].(string)
	require.True(t, ok)
	assert.Contains(t, improved, "You are a research agent.")
	assert.Contains(t, improved, "Provide clear, concise responses")
}

func TestCall_GenerateImprovedPrompt_RequiresPrompt(t *testing.T) {
	toolset, _ := newTestToolset(t)

	_, err := toolset.Call(context.Background(), "generate_improved_system_prompt", map[string]interface{}{
		"agent_name": "research_agent",
	})
	require.Error(t, err)
}

func TestCall_MonitorSystemHealth_EmptyStoreIsDegraded(t *testing.T) {
	toolset, _ := newTestToolset(t)

	payload := callJSON(t, toolset, "monitor_system_health", nil)

	health, ok := payload["health_status"].(map[string]interface{})
	require.True(t, ok)
	// No interactions at all means every agent scores zero
	assert.Equal(t, "degraded", health["system_status"])
}

func TestCall_PerformanceTrends(t *testing.T) {
	toolset, db := newTestToolset(t)

	for _, success := range []bool{true, false} {
		_, err := db.RecordInteraction(context.Background(), &database.RecordInteractionRequest{
			SessionID: "s1", AgentName: "research_agent", Success: success, DurationSec: 1.0,
		})
		require.NoError(t, err)
	}

	payload := callJSON(t, toolset, "get_performance_trends", map[string]interface{}{
		"agent_name": "research_agent",
	})

	assert.Equal(t, "success_rate", payload["metric_analyzed"])
	trends, ok := payload["trends"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(7), trends["analysis_period_days"])
}

func TestCall_AddEvaluationTasks(t *testing.T) {
	toolset, _ := newTestToolset(t)

	payload := callJSON(t, toolset, "add_evaluation_tasks_to_todos", map[string]interface{}{
		"agent_name": "research_agent",
		"evaluation_results": map[string]interface{}{
			"improvement_needed": true,
			"priority_areas":     []interface{}{"success_rate"},
		},
	})

	assert.Equal(t, true, payload["success"])
	tasks, ok := payload["tasks_added"].([]interface{})
	require.True(t, ok)
	// One improvement task plus the standing periodic task
	assert.Len(t, tasks, 2)
}
