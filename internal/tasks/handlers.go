package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"taskflow-backend/internal/auth"
	"taskflow-backend/internal/email"
)

type Handler struct {
	Store Store
	Log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	return &Handler{Store: store, Log: log}
}

type createRequest struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	Priority       string  `json:"priority"`
	DueDate        *string `json:"due_date"`
	EnableReminder bool    `json:"enable_reminder"`
}

type updateRequest struct {
	Title          *string `json:"title"`
	Description    *string `json:"description"`
	Priority       *string `json:"priority"`
	DueDate        *string `json:"due_date"`
	EnableReminder *bool   `json:"enable_reminder"`
}

// parseDueDate accepts RFC3339 or a bare YYYY-MM-DD date. A value without
// timezone information is treated as UTC.
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		utc := t.UTC()
		return &utc, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ----------------------
//     TASK HANDLERS
// ----------------------

// Create handles POST /tasks/
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}

	in := TaskCreate{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       PriorityMedium,
		EnableReminder: req.EnableReminder,
	}

	if req.Priority != "" {
		p, err := ParsePriority(req.Priority)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Priority = p
	}

	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			http.Error(w, "invalid due_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		in.DueDate = due
	}

	t, err := h.Store.Create(r.Context(), uid, in)
	if err != nil {
		h.Log.Error("create task failed", zap.Int64("user_id", uid), zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	if t.EnableReminder && t.DueDate != nil {
		if addr, ok := auth.EmailFromContext(r.Context()); ok {
			email.ReminderNotice(h.Log, addr, t.Title, *t.DueDate)
		}
	}

	h.Log.Info("task created", zap.Int64("user_id", uid), zap.Int64("task_id", t.ID))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

// List handles GET /tasks/?title=&due_date=&priority=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	f := Filter{Title: r.URL.Query().Get("title")}

	if s := r.URL.Query().Get("due_date"); s != "" {
		due, err := parseDueDate(s)
		if err != nil {
			http.Error(w, "invalid due_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		f.DueDate = due
	}

	if s := r.URL.Query().Get("priority"); s != "" {
		p, err := ParsePriority(s)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.Priority = &p
	}

	out, err := h.Store.List(r.Context(), uid, f)
	if err != nil {
		h.Log.Error("list tasks failed", zap.Int64("user_id", uid), zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	if out == nil {
		out = []Task{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Get handles GET /tasks/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	t, err := h.Store.Get(r.Context(), uid, id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("get task failed", zap.Int64("user_id", uid), zap.Int64("task_id", id), zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// Update handles PUT /tasks/{id}; absent fields keep their stored values.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	in := TaskUpdate{
		Title:          req.Title,
		Description:    req.Description,
		EnableReminder: req.EnableReminder,
	}

	if req.Priority != nil {
		p, err := ParsePriority(*req.Priority)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		in.Priority = &p
	}

	if req.DueDate != nil {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			http.Error(w, "invalid due_date, use YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		in.DueDate = due
	}

	t, err := h.Store.Update(r.Context(), uid, id, in)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Log.Error("update task failed", zap.Int64("user_id", uid), zap.Int64("task_id", id), zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

// Delete handles DELETE /tasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid task id", http.StatusBadRequest)
		return
	}

	if _, err := h.Store.Delete(r.Context(), uid, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Task not found", http.StatusNotFound)
			return
		}
		h.Log.Error("delete task failed", zap.Int64("user_id", uid), zap.Int64("task_id", id), zap.Error(err))
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("task deleted", zap.Int64("user_id", uid), zap.Int64("task_id", id))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Task deleted successfully"})
}
