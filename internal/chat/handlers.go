package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"taskflow-backend/internal/ai"
	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/tasks"
	"taskflow-backend/internal/tools"
)

const modelErrorReply = "Sorry, I couldn't reach the assistant right now. Please try again."

// ModelClient is the slice of the AI client the orchestrator needs.
type ModelClient interface {
	SendMessage(ctx context.Context, history []ai.Turn, message string, tools []ai.ToolDefinition) (*ai.Reply, error)
}

type Handler struct {
	Sessions *Sessions
	Store    tasks.Store
	AI       ModelClient
	Runner   *tools.Runner
	Log      *zap.Logger
}

func NewHandler(sessions *Sessions, store tasks.Store, client ModelClient, runner *tools.Runner, log *zap.Logger) *Handler {
	return &Handler{
		Sessions: sessions,
		Store:    store,
		AI:       client,
		Runner:   runner,
		Log:      log,
	}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply       string `json:"reply"`
	TaskCreated bool   `json:"task_created,omitempty"`
	TaskID      *int64 `json:"task_id,omitempty"`
}

// Chat handles POST /chat/
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	resp := h.handleMessage(r.Context(), uid, req.Message)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleMessage runs one conversational turn: guided flow if one is in
// progress, the trigger check, otherwise a model round-trip with tool
// dispatch.
func (h *Handler) handleMessage(ctx context.Context, userID int64, message string) chatResponse {
	// An in-progress guided flow consumes the message before the model
	// ever sees it.
	if res, inGuided := h.Sessions.AdvanceGuided(userID, message); inGuided {
		if res.Draft == nil {
			return chatResponse{Reply: res.Reply}
		}

		desc := res.Draft.Description
		t, err := h.Store.Create(ctx, userID, tasks.TaskCreate{
			Title:       res.Draft.Title,
			Description: &desc,
			Priority:    res.Draft.Priority,
		})
		if err != nil {
			h.Log.Error("guided task create failed", zap.Int64("user_id", userID), zap.Error(err))
			return chatResponse{Reply: "Something went wrong saving the task. Please try again."}
		}

		h.Log.Info("task created via guided flow",
			zap.Int64("user_id", userID), zap.Int64("task_id", t.ID))
		return chatResponse{Reply: res.Reply, TaskCreated: true, TaskID: &t.ID}
	}

	if IsTrigger(message) {
		return chatResponse{Reply: h.Sessions.StartGuided(userID)}
	}

	// Free chat: forward the transcript plus the new message, with the
	// tool catalog, to the model.
	history := h.Sessions.History(userID)
	reply, err := h.AI.SendMessage(ctx, history, message, tools.Definitions())
	if err != nil {
		// Logged in full here; the client only ever sees a generic
		// failure, and the failed turn stays out of the transcript.
		h.Log.Error("model call failed", zap.Int64("user_id", userID), zap.Error(err))
		return chatResponse{Reply: modelErrorReply}
	}

	var resp chatResponse
	var parts []string
	if reply.Text != "" {
		parts = append(parts, reply.Text)
	}

	for _, call := range reply.ToolCalls {
		result := h.Runner.Run(ctx, call.Name, call.Args, strconv.FormatInt(userID, 10))
		parts = append(parts, renderToolResult(call.Name, result))

		if call.Name == "create_task" && result.Err == nil {
			if t, ok := result.Payload.(tasks.Task); ok {
				resp.TaskCreated = true
				id := t.ID
				resp.TaskID = &id
			}
		}
	}

	resp.Reply = strings.Join(parts, "\n")
	if resp.Reply == "" {
		resp.Reply = "No reply from AI"
	}

	h.Sessions.AppendTurn(userID, message, resp.Reply)
	return resp
}

// renderToolResult turns a dispatcher outcome into a line of reply text.
func renderToolResult(toolName string, res tools.Result) string {
	if res.Err != nil {
		return "Sorry, that didn't work: " + res.Err.Message
	}

	switch payload := res.Payload.(type) {
	case tasks.Task:
		switch toolName {
		case "create_task":
			return fmt.Sprintf("Created task '%s' (id %d).", payload.Title, payload.ID)
		case "update_task":
			return fmt.Sprintf("Updated task '%s'.", payload.Title)
		}
	case []tasks.Task:
		if len(payload) == 0 {
			return "You have no matching tasks."
		}
		lines := make([]string, 0, len(payload)+1)
		lines = append(lines, fmt.Sprintf("You have %d task(s):", len(payload)))
		for _, t := range payload {
			line := fmt.Sprintf("- [%s] %s (id %d)", t.Priority, t.Title, t.ID)
			if t.DueDate != nil {
				line += ", due " + t.DueDate.Format("2006-01-02")
			}
			lines = append(lines, line)
		}
		return strings.Join(lines, "\n")
	case map[string]string:
		if msg, ok := payload["message"]; ok {
			return msg
		}
	}

	return "Done."
}
