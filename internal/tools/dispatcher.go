package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"taskflow-backend/internal/tasks"
)

// ErrorKind classifies dispatcher failures so the caller can tell
// user-correctable input apart from infrastructure trouble.
type ErrorKind string

const (
	KindUnknownTool     ErrorKind = "unknown_tool"
	KindInvalidIdentity ErrorKind = "invalid_identity"
	KindValidation      ErrorKind = "validation"
	KindInvalidPriority ErrorKind = "invalid_priority"
	KindInvalidDate     ErrorKind = "invalid_date"
	KindNotFound        ErrorKind = "not_found"
	KindInternal        ErrorKind = "internal"
)

type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Result is the dispatcher's outcome. Exactly one of Payload and Err is
// set; errors are data here, never panics — a bad tool call must not
// abort the rest of the caller's turn.
type Result struct {
	Payload any
	Err     *Error
}

func fail(kind ErrorKind, message string) Result {
	return Result{Err: &Error{Kind: kind, Message: message}}
}

// Runner maps tool names to handlers and executes them under a specific
// user's identity.
type Runner struct {
	Store tasks.Store
	Log   *zap.Logger
}

func NewRunner(store tasks.Store, log *zap.Logger) *Runner {
	return &Runner{Store: store, Log: log}
}

// Run executes one tool call. actingUserID arrives as the string the
// model layer carries; it must parse into the domain's numeric identity.
func (r *Runner) Run(ctx context.Context, toolName string, args map[string]any, actingUserID string) Result {
	userID, err := strconv.ParseInt(actingUserID, 10, 64)
	if err != nil {
		return fail(KindInvalidIdentity, "Invalid user ID")
	}

	var res Result
	switch toolName {
	case "create_task":
		res = r.runCreate(ctx, userID, args)
	case "list_tasks":
		res = r.runList(ctx, userID, args)
	case "update_task":
		res = r.runUpdate(ctx, userID, args)
	case "delete_task":
		res = r.runDelete(ctx, userID, args)
	default:
		return fail(KindUnknownTool, "Tool not found")
	}

	if res.Err != nil {
		r.Log.Info("tool call rejected",
			zap.String("tool", toolName),
			zap.Int64("user_id", userID),
			zap.String("kind", string(res.Err.Kind)),
			zap.String("message", res.Err.Message),
		)
	}
	return res
}

// decodeArgs re-encodes the untyped argument map into a typed request
// struct, rejecting unknown fields instead of silently ignoring them.
func decodeArgs(args map[string]any, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// parseDate is strict: YYYY-MM-DD only, interpreted as UTC.
func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// parseTaskID accepts the identifier as either a string or a number,
// since the model is inconsistent about which it sends.
func parseTaskID(v any) (int64, bool) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		return n, err == nil
	case float64:
		n := int64(id)
		return n, float64(n) == id
	case json.Number:
		n, err := id.Int64()
		return n, err == nil
	default:
		return 0, false
	}
}

// ----------------------
//     TOOL HANDLERS
// ----------------------

type createArgs struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	DueDate        *string `json:"due_date"`
	EnableReminder *bool   `json:"enable_reminder"`
}

func (r *Runner) runCreate(ctx context.Context, userID int64, args map[string]any) Result {
	var a createArgs
	if err := decodeArgs(args, &a); err != nil {
		return fail(KindValidation, "Invalid arguments: "+err.Error())
	}
	if a.Title == nil || *a.Title == "" {
		return fail(KindValidation, "title is required")
	}

	in := tasks.TaskCreate{
		Title:       *a.Title,
		Description: a.Description,
		Priority:    tasks.PriorityMedium,
	}

	if a.Priority != nil {
		p, err := tasks.ParsePriority(*a.Priority)
		if err != nil {
			return fail(KindInvalidPriority, "Priority must be Low, Medium, or High")
		}
		in.Priority = p
	}

	if a.DueDate != nil && *a.DueDate != "" {
		due, err := parseDate(*a.DueDate)
		if err != nil {
			return fail(KindInvalidDate, "Invalid date format. Use YYYY-MM-DD")
		}
		in.DueDate = &due
	}

	if a.EnableReminder != nil {
		in.EnableReminder = *a.EnableReminder
	}

	t, err := r.Store.Create(ctx, userID, in)
	if err != nil {
		r.Log.Error("create_task store failure", zap.Int64("user_id", userID), zap.Error(err))
		return fail(KindInternal, "Could not create the task")
	}
	return Result{Payload: t}
}

type listArgs struct {
	Title    *string `json:"title"`
	DueDate  *string `json:"due_date"`
	Priority *string `json:"priority"`
}

func (r *Runner) runList(ctx context.Context, userID int64, args map[string]any) Result {
	var a listArgs
	if err := decodeArgs(args, &a); err != nil {
		return fail(KindValidation, "Invalid arguments: "+err.Error())
	}

	var f tasks.Filter
	if a.Title != nil {
		f.Title = *a.Title
	}

	if a.Priority != nil && *a.Priority != "" {
		p, err := tasks.ParsePriority(*a.Priority)
		if err != nil {
			return fail(KindInvalidPriority, "Priority must be Low, Medium, or High")
		}
		f.Priority = &p
	}

	if a.DueDate != nil && *a.DueDate != "" {
		due, err := parseDate(*a.DueDate)
		if err != nil {
			return fail(KindInvalidDate, "Invalid date format. Use YYYY-MM-DD")
		}
		f.DueDate = &due
	}

	out, err := r.Store.List(ctx, userID, f)
	if err != nil {
		r.Log.Error("list_tasks store failure", zap.Int64("user_id", userID), zap.Error(err))
		return fail(KindInternal, "Could not list tasks")
	}
	if out == nil {
		out = []tasks.Task{}
	}
	return Result{Payload: out}
}

type updateArgs struct {
	TaskID         any     `json:"task_id"`
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	DueDate        *string `json:"due_date"`
	EnableReminder *bool   `json:"enable_reminder"`
}

func (r *Runner) runUpdate(ctx context.Context, userID int64, args map[string]any) Result {
	var a updateArgs
	if err := decodeArgs(args, &a); err != nil {
		return fail(KindValidation, "Invalid arguments: "+err.Error())
	}
	if a.TaskID == nil {
		return fail(KindValidation, "task_id is required")
	}
	taskID, ok := parseTaskID(a.TaskID)
	if !ok {
		return fail(KindValidation, "Task ID must be an integer")
	}

	// Only fields present in the arguments are applied; everything else
	// keeps its stored value.
	in := tasks.TaskUpdate{
		Title:          a.Title,
		Description:    a.Description,
		EnableReminder: a.EnableReminder,
	}

	if a.Priority != nil && *a.Priority != "" {
		p, err := tasks.ParsePriority(*a.Priority)
		if err != nil {
			return fail(KindInvalidPriority, "Priority must be Low, Medium, or High")
		}
		in.Priority = &p
	}

	if a.DueDate != nil && *a.DueDate != "" {
		due, err := parseDate(*a.DueDate)
		if err != nil {
			return fail(KindInvalidDate, "Invalid date format. Use YYYY-MM-DD")
		}
		in.DueDate = &due
	}

	t, err := r.Store.Update(ctx, userID, taskID, in)
	if errors.Is(err, tasks.ErrNotFound) {
		return fail(KindNotFound, "Task not found")
	}
	if err != nil {
		r.Log.Error("update_task store failure",
			zap.Int64("user_id", userID), zap.Int64("task_id", taskID), zap.Error(err))
		return fail(KindInternal, "Could not update the task")
	}
	return Result{Payload: t}
}

type deleteArgs struct {
	TaskID any `json:"task_id"`
}

func (r *Runner) runDelete(ctx context.Context, userID int64, args map[string]any) Result {
	var a deleteArgs
	if err := decodeArgs(args, &a); err != nil {
		return fail(KindValidation, "Invalid arguments: "+err.Error())
	}
	if a.TaskID == nil {
		return fail(KindValidation, "task_id is required")
	}
	taskID, ok := parseTaskID(a.TaskID)
	if !ok {
		return fail(KindValidation, "Task ID must be an integer")
	}

	t, err := r.Store.Delete(ctx, userID, taskID)
	if errors.Is(err, tasks.ErrNotFound) {
		return fail(KindNotFound, "Task not found")
	}
	if err != nil {
		r.Log.Error("delete_task store failure",
			zap.Int64("user_id", userID), zap.Int64("task_id", taskID), zap.Error(err))
		return fail(KindInternal, "Could not delete the task")
	}
	return Result{Payload: map[string]string{
		"message": fmt.Sprintf("Task '%s' deleted", t.Title),
	}}
}
