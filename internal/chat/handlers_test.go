package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow-backend/internal/ai"
	"taskflow-backend/internal/tasks"
	"taskflow-backend/internal/tools"
)

// stubStore keeps tasks in a map; enough store behavior for the
// orchestrator paths under test.
type stubStore struct {
	nextID int64
	byID   map[int64]tasks.Task
	err    error
}

func newStubStore() *stubStore {
	return &stubStore{byID: make(map[int64]tasks.Task)}
}

func (s *stubStore) Create(_ context.Context, userID int64, in tasks.TaskCreate) (tasks.Task, error) {
	if s.err != nil {
		return tasks.Task{}, s.err
	}
	s.nextID++
	if in.Priority == "" {
		in.Priority = tasks.PriorityMedium
	}
	t := tasks.Task{
		ID:          s.nextID,
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
		CreatedAt:   time.Now().UTC(),
	}
	s.byID[t.ID] = t
	return t, nil
}

func (s *stubStore) List(_ context.Context, userID int64, f tasks.Filter) ([]tasks.Task, error) {
	var out []tasks.Task
	for _, t := range s.byID {
		if t.UserID != userID {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, userID, taskID int64) (tasks.Task, error) {
	t, ok := s.byID[taskID]
	if !ok || t.UserID != userID {
		return tasks.Task{}, tasks.ErrNotFound
	}
	return t, nil
}

func (s *stubStore) Update(ctx context.Context, userID, taskID int64, in tasks.TaskUpdate) (tasks.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return tasks.Task{}, err
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Priority != nil {
		t.Priority = *in.Priority
	}
	s.byID[taskID] = t
	return t, nil
}

func (s *stubStore) Delete(ctx context.Context, userID, taskID int64) (tasks.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return tasks.Task{}, err
	}
	delete(s.byID, taskID)
	return t, nil
}

// fakeModel returns a canned reply (or error) and records what it was
// sent.
type fakeModel struct {
	reply *ai.Reply
	err   error

	gotHistory []ai.Turn
	gotMessage string
	gotTools   []ai.ToolDefinition
	calls      int
}

func (f *fakeModel) SendMessage(_ context.Context, history []ai.Turn, message string, defs []ai.ToolDefinition) (*ai.Reply, error) {
	f.calls++
	f.gotHistory = history
	f.gotMessage = message
	f.gotTools = defs
	if f.err != nil {
		return nil, f.err
	}
	return f.reply, nil
}

func newTestHandler(model *fakeModel) (*Handler, *stubStore) {
	store := newStubStore()
	log := zap.NewNop()
	return NewHandler(NewSessions(), store, model, tools.NewRunner(store, log), log), store
}

func TestHandleMessagePlainText(t *testing.T) {
	model := &fakeModel{reply: &ai.Reply{Text: "Hello! How can I help?"}}
	h, _ := newTestHandler(model)

	resp := h.handleMessage(context.Background(), 1, "hi there")
	assert.Equal(t, "Hello! How can I help?", resp.Reply)
	assert.False(t, resp.TaskCreated)

	// The exchange was recorded and resubmitted on the next turn.
	resp = h.handleMessage(context.Background(), 1, "thanks")
	require.Len(t, model.gotHistory, 2)
	assert.Equal(t, ai.Turn{Role: ai.RoleUser, Text: "hi there"}, model.gotHistory[0])
	assert.Equal(t, ai.Turn{Role: ai.RoleModel, Text: "Hello! How can I help?"}, model.gotHistory[1])
	assert.Equal(t, "thanks", model.gotMessage)
	assert.Len(t, model.gotTools, 4)
}

func TestHandleMessageModelFailure(t *testing.T) {
	model := &fakeModel{err: errors.New("connection refused")}
	h, _ := newTestHandler(model)

	resp := h.handleMessage(context.Background(), 1, "hello")
	assert.Equal(t, modelErrorReply, resp.Reply)

	// The failed turn must not poison the transcript.
	assert.Empty(t, h.Sessions.History(1))
}

func TestHandleMessageToolCallCreate(t *testing.T) {
	model := &fakeModel{reply: &ai.Reply{
		Text: "Sure, adding that now.",
		ToolCalls: []ai.ToolCall{{
			Name: "create_task",
			Args: map[string]any{"title": "Buy milk", "priority": "low"},
		}},
	}}
	h, store := newTestHandler(model)

	resp := h.handleMessage(context.Background(), 1, "add buy milk to my list")

	assert.True(t, resp.TaskCreated)
	require.NotNil(t, resp.TaskID)
	assert.Contains(t, resp.Reply, "Sure, adding that now.")
	assert.Contains(t, resp.Reply, "Created task 'Buy milk'")

	created := store.byID[*resp.TaskID]
	assert.Equal(t, "Buy milk", created.Title)
	assert.Equal(t, tasks.PriorityLow, created.Priority)
	assert.Equal(t, int64(1), created.UserID)
}

func TestHandleMessageToolCallList(t *testing.T) {
	h, store := newTestHandler(&fakeModel{})
	ctx := context.Background()

	store.Create(ctx, 1, tasks.TaskCreate{Title: "mine", Priority: tasks.PriorityHigh})
	store.Create(ctx, 2, tasks.TaskCreate{Title: "theirs", Priority: tasks.PriorityHigh})

	h.AI = &fakeModel{reply: &ai.Reply{
		ToolCalls: []ai.ToolCall{{
			Name: "list_tasks",
			Args: map[string]any{"priority": "High"},
		}},
	}}

	resp := h.handleMessage(ctx, 1, "list my high priority tasks")
	assert.Contains(t, resp.Reply, "You have 1 task(s):")
	assert.Contains(t, resp.Reply, "mine")
	assert.NotContains(t, resp.Reply, "theirs")
}

func TestHandleMessageToolCallError(t *testing.T) {
	model := &fakeModel{reply: &ai.Reply{
		ToolCalls: []ai.ToolCall{{
			Name: "delete_task",
			Args: map[string]any{"task_id": "99"},
		}},
	}}
	h, _ := newTestHandler(model)

	// A failed tool call produces an error line, not a dropped turn.
	resp := h.handleMessage(context.Background(), 1, "delete task 99")
	assert.Contains(t, resp.Reply, "Task not found")
	assert.Len(t, h.Sessions.History(1), 2)
}

func TestHandleMessageGuidedFlow(t *testing.T) {
	model := &fakeModel{reply: &ai.Reply{Text: "should not be called"}}
	h, store := newTestHandler(model)
	ctx := context.Background()

	resp := h.handleMessage(ctx, 1, "add task")
	assert.Equal(t, promptTitle, resp.Reply)

	resp = h.handleMessage(ctx, 1, "Write report")
	assert.Equal(t, promptDescription, resp.Reply)

	resp = h.handleMessage(ctx, 1, "due Friday")
	assert.Equal(t, promptPriority, resp.Reply)

	resp = h.handleMessage(ctx, 1, "high")
	assert.Equal(t, "Task 'Write report' added successfully!", resp.Reply)
	assert.True(t, resp.TaskCreated)
	require.NotNil(t, resp.TaskID)

	created := store.byID[*resp.TaskID]
	assert.Equal(t, "Write report", created.Title)
	require.NotNil(t, created.Description)
	assert.Equal(t, "due Friday", *created.Description)
	assert.Equal(t, tasks.PriorityHigh, created.Priority)

	// The model never saw any of the guided messages.
	assert.Zero(t, model.calls)

	// Back in free chat afterward.
	resp = h.handleMessage(ctx, 1, "hello")
	assert.Equal(t, 1, model.calls)
	assert.Equal(t, "should not be called", resp.Reply)
}

func TestHandleMessageGuidedCommitFailure(t *testing.T) {
	h, store := newTestHandler(&fakeModel{})
	ctx := context.Background()

	h.handleMessage(ctx, 1, "add task")
	h.handleMessage(ctx, 1, "title")
	h.handleMessage(ctx, 1, "desc")

	store.err = errors.New("db down")
	resp := h.handleMessage(ctx, 1, "low")
	assert.False(t, resp.TaskCreated)
	assert.True(t, strings.Contains(resp.Reply, "Something went wrong"))
}
