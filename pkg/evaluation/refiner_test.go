package evaluation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const basePrompt = "You are a research agent. Gather and verify information."

func highScoreAnalysis() *EvaluationResult {
	return &EvaluationResult{OverallScore: 0.95}
}

func TestRefine_NoTargetsHighScoreIsIdentity(t *testing.T) {
	result := Refine(basePrompt, highScoreAnalysis(), nil, nil)

	assert.Equal(t, basePrompt, result.ImprovedPrompt)
	assert.Equal(t, 0, result.ChangeSummary.ImprovementsApplied)
	assert.Equal(t, len(basePrompt), result.ChangeSummary.OriginalLength)
	assert.Equal(t, len(basePrompt), result.ChangeSummary.ImprovedLength)
}

func TestRefine_AppendsFragmentPerTarget(t *testing.T) {
	result := Refine(basePrompt, highScoreAnalysis(), nil,
		[]Improvement{ImprovementClarity, ImprovementReasoning})

	assert.True(t, strings.HasPrefix(result.ImprovedPrompt, basePrompt))
	assert.Contains(t, result.ImprovedPrompt, "Provide clear, concise responses")
	assert.Contains(t, result.ImprovedPrompt, "break down your reasoning into clear steps")
	assert.NotContains(t, result.ImprovedPrompt, "When encountering errors")

	require.Len(t, result.ChangeSummary.Changes, 2)
	assert.Equal(t, ImprovementClarity, result.ChangeSummary.Changes[0].Type)
	assert.Equal(t, ImprovementReasoning, result.ChangeSummary.Changes[1].Type)
	assert.Equal(t, 2, result.ChangeSummary.ImprovementsApplied)
}

func TestRefine_TargetsApplyInCallerOrder(t *testing.T) {
	result := Refine(basePrompt, highScoreAnalysis(), nil,
		[]Improvement{ImprovementReasoning, ImprovementClarity})

	reasoningAt := strings.Index(result.ImprovedPrompt, "break down your reasoning")
	clarityAt := strings.Index(result.ImprovedPrompt, "Provide clear, concise responses")
	require.GreaterOrEqual(t, reasoningAt, 0)
	require.GreaterOrEqual(t, clarityAt, 0)
	assert.Less(t, reasoningAt, clarityAt)
}

func TestRefine_UnrecognizedTargetsSkipped(t *testing.T) {
	result := Refine(basePrompt, highScoreAnalysis(), nil,
		[]Improvement{"speed", ImprovementClarity})

	assert.Equal(t, 1, result.ChangeSummary.ImprovementsApplied)
	require.Len(t, result.ChangeSummary.Changes, 1)
	assert.Equal(t, ImprovementClarity, result.ChangeSummary.Changes[0].Type)
	// The full target list is still recorded for audit
	assert.Equal(t, []Improvement{"speed", ImprovementClarity}, result.ChangeSummary.PerformanceTargets)
}

func TestRefine_LowScoreAddsClarificationInstruction(t *testing.T) {
	low := &EvaluationResult{OverallScore: 0.7}

	result := Refine(basePrompt, low, nil, nil)

	assert.Contains(t, result.ImprovedPrompt, "ask for clarification")
	// The clarification is not counted as an applied improvement tag
	assert.Equal(t, 0, result.ChangeSummary.ImprovementsApplied)
}

func TestRefine_ScoreAtCutoffDoesNotAddClarification(t *testing.T) {
	at := &EvaluationResult{OverallScore: 0.9}

	result := Refine(basePrompt, at, nil, nil)

	assert.NotContains(t, result.ImprovedPrompt, "ask for clarification")
}

func TestRefine_NilAnalysisDoesNotAddClarification(t *testing.T) {
	result := Refine(basePrompt, nil, nil, []Improvement{ImprovementClarity})

	assert.NotContains(t, result.ImprovedPrompt, "ask for clarification")
}

func TestRefine_IsDeterministic(t *testing.T) {
	targets := []Improvement{ImprovementClarity, ImprovementErrorHandling}
	low := &EvaluationResult{OverallScore: 0.5}

	first := Refine(basePrompt, low, nil, targets)
	second := Refine(basePrompt, low, nil, targets)

	assert.Equal(t, first, second)
}

func TestRefine_LengthsTrackPromptGrowth(t *testing.T) {
	result := Refine(basePrompt, highScoreAnalysis(), nil, []Improvement{ImprovementErrorHandling})

	assert.Equal(t, len(basePrompt), result.ChangeSummary.OriginalLength)
	assert.Equal(t, len(result.ImprovedPrompt), result.ChangeSummary.ImprovedLength)
	assert.Greater(t, result.ChangeSummary.ImprovedLength, result.ChangeSummary.OriginalLength)
}
