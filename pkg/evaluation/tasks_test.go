package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImprovementTasks_NoImprovementNeeded(t *testing.T) {
	result := &EvaluationResult{ImprovementNeeded: false}

	tasks := ImprovementTasks(result)

	require.Len(t, tasks, 1)
	assert.Equal(t, "Conduct periodic system performance evaluation", tasks[0].Content)
	assert.Equal(t, TodoPriorityMedium, tasks[0].Priority)
	assert.Equal(t, CategoryEvaluation, tasks[0].Category)
}

func TestImprovementTasks_PriorityAreasBecomeHighPriorityTasks(t *testing.T) {
	result := &EvaluationResult{
		ImprovementNeeded: true,
		PriorityAreas:     []Criterion{CriterionSuccessRate, CriterionErrorHandling},
	}

	tasks := ImprovementTasks(result)

	require.Len(t, tasks, 3)
	assert.Equal(t, "Improve success_rate based on performance evaluation", tasks[0].Content)
	assert.Equal(t, TodoPriorityHigh, tasks[0].Priority)
	assert.Equal(t, CategorySystemImprovement, tasks[0].Category)
	assert.Equal(t, "Improve error_handling based on performance evaluation", tasks[1].Content)
}

func TestImprovementTasks_OnlyHighPriorityActionsIncluded(t *testing.T) {
	result := &EvaluationResult{
		ImprovementNeeded: true,
		RecommendedActions: []RecommendedAction{
			{Action: "system_prompt_refinement", Priority: "high", Description: "Refine system prompt to improve success_rate"},
			{Action: "tool_optimization", Priority: "medium", Description: "Optimize tool usage patterns"},
		},
	}

	tasks := ImprovementTasks(result)

	require.Len(t, tasks, 2)
	assert.Equal(t, "Refine system prompt to improve success_rate", tasks[0].Content)
	assert.Equal(t, TodoPriorityHigh, tasks[0].Priority)
}

func TestImprovementTasks_NilResult(t *testing.T) {
	tasks := ImprovementTasks(nil)

	require.Len(t, tasks, 1)
	assert.Equal(t, CategoryEvaluation, tasks[0].Category)
}

func TestInMemoryTodoList_AppendAndCopy(t *testing.T) {
	list := NewInMemoryTodoList()
	require.NoError(t, list.Append(TodoTask{Content: "first"}, TodoTask{Content: "second"}))

	items := list.Items()
	require.Len(t, items, 2)

	// Items returns a copy; mutating it must not affect the list
	items[0].Content = "mutated"
	assert.Equal(t, "first", list.Items()[0].Content)
}
