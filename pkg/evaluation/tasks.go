package evaluation

import "fmt"

// ImprovementTasks expands an evaluation result into todo tasks: one
// high-priority improvement task per priority area, one per high-priority
// recommended action, and the standing periodic-evaluation task. Results that
// need no improvement only yield the periodic task.
func ImprovementTasks(result *EvaluationResult) []TodoTask {
	var tasks []TodoTask

	if result != nil && result.ImprovementNeeded {
		for _, area := range result.PriorityAreas {
			tasks = append(tasks, TodoTask{
				Content:  fmt.Sprintf("Improve %s based on performance evaluation", area),
				Status:   TodoStatusPending,
				Priority: TodoPriorityHigh,
				Category: CategorySystemImprovement,
			})
		}

		for _, action := range result.RecommendedActions {
			if action.Priority != string(TodoPriorityHigh) {
				continue
			}
			tasks = append(tasks, TodoTask{
				Content:  action.Description,
				Status:   TodoStatusPending,
				Priority: TodoPriorityHigh,
				Category: CategorySystemImprovement,
			})
		}
	}

	tasks = append(tasks, TodoTask{
		Content:  "Conduct periodic system performance evaluation",
		Status:   TodoStatusPending,
		Priority: TodoPriorityMedium,
		Category: CategoryEvaluation,
	})

	return tasks
}
