package tasks

import (
	"errors"
	"strings"
	"time"
)

// Priority is a closed three-value set. Anything else is a validation
// error, never silently coerced.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var ErrBadPriority = errors.New("priority must be Low, Medium, or High")

// ParsePriority accepts any casing ("low", "HIGH", ...) and returns the
// normalized enum value.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	default:
		return "", ErrBadPriority
	}
}

type Task struct {
	ID             int64      `db:"id" json:"id"`
	UserID         int64      `db:"user_id" json:"user_id"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description"`
	Priority       Priority   `db:"priority" json:"priority"`
	DueDate        *time.Time `db:"due_date" json:"due_date"`
	EnableReminder bool       `db:"enable_reminder" json:"enable_reminder"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

type TaskCreate struct {
	Title          string
	Description    *string
	Priority       Priority
	DueDate        *time.Time
	EnableReminder bool
}

// TaskUpdate carries partial-update semantics: nil means "leave the
// stored value untouched".
type TaskUpdate struct {
	Title          *string
	Description    *string
	Priority       *Priority
	DueDate        *time.Time
	EnableReminder *bool
}

// Filter narrows List. Title is a case-insensitive substring match,
// DueDate an exact calendar-date match.
type Filter struct {
	Title    string
	DueDate  *time.Time
	Priority *Priority
}
