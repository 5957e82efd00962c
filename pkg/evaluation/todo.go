package evaluation

// InMemoryTodoList is the in-process TodoList used by a single agent turn
// loop. Like the scheduler it belongs to one loop and is not synchronized.
type InMemoryTodoList struct {
	tasks []TodoTask
}

// NewInMemoryTodoList creates an empty todo list, optionally seeded
func NewInMemoryTodoList(seed ...TodoTask) *InMemoryTodoList {
	list := &InMemoryTodoList{}
	list.tasks = append(list.tasks, seed...)
	return list
}

// Items returns a copy of the current tasks in insertion order
func (l *InMemoryTodoList) Items() []TodoTask {
	items := make([]TodoTask, len(l.tasks))
	copy(items, l.tasks)
	return items
}

// Append adds tasks to the end of the list
func (l *InMemoryTodoList) Append(tasks ...TodoTask) error {
	l.tasks = append(l.tasks, tasks...)
	return nil
}
