package task

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithType(taskType Type) TaskOption {
	if taskType == "" {
		return nil
	}
	return func(task *Task) {
		task.Type = taskType
	}
}
