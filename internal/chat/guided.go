package chat

import (
	"strings"

	"taskflow-backend/internal/tasks"
)

// Guided task creation collects title, description, and priority one
// message at a time, without involving the model.

const (
	triggerPhrase = "add task"

	promptTitle       = "Sure! Let's create a new task. What is the task title?"
	promptDescription = "Got it! Now provide the task description:"
	promptPriority    = "Great! Set the priority for this task (Low, Medium, High):"
	promptBadPriority = "Invalid priority. Please enter one of: Low, Medium, High"
)

const (
	maxTitleLen       = 100
	maxDescriptionLen = 500
)

// IsTrigger reports whether a free-chat message should start guided mode.
func IsTrigger(message string) bool {
	return strings.Contains(strings.ToLower(strings.TrimSpace(message)), triggerPhrase)
}

// TaskDraft is the completed output of a guided flow.
type TaskDraft struct {
	Title       string
	Description string
	Priority    tasks.Priority
}

type GuidedResult struct {
	Reply string
	Draft *TaskDraft // non-nil once all fields are collected
}

// guidedTask tracks which fields have been collected so far. The next
// unset field determines the current state.
type guidedTask struct {
	title       *string
	description *string
}

func (g *guidedTask) advance(message string) GuidedResult {
	value := strings.TrimSpace(message)

	if g.title == nil {
		title := truncate(value, maxTitleLen)
		g.title = &title
		return GuidedResult{Reply: promptDescription}
	}

	if g.description == nil {
		desc := truncate(value, maxDescriptionLen)
		g.description = &desc
		return GuidedResult{Reply: promptPriority}
	}

	p, err := tasks.ParsePriority(value)
	if err != nil {
		// Re-prompt without advancing.
		return GuidedResult{Reply: promptBadPriority}
	}

	return GuidedResult{
		Reply: "Task '" + *g.title + "' added successfully!",
		Draft: &TaskDraft{
			Title:       *g.title,
			Description: *g.description,
			Priority:    p,
		},
	}
}

// truncate bounds user/model input by character count, not bytes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
