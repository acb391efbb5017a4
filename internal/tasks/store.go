package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("task not found")

// Store is user-scoped by construction: every operation filters on the
// owning user, so a task is never visible outside its owner's requests.
type Store interface {
	Create(ctx context.Context, userID int64, in TaskCreate) (Task, error)
	List(ctx context.Context, userID int64, f Filter) ([]Task, error)
	Get(ctx context.Context, userID, taskID int64) (Task, error)
	Update(ctx context.Context, userID, taskID int64, in TaskUpdate) (Task, error)
	Delete(ctx context.Context, userID, taskID int64) (Task, error)
}

type SQLStore struct {
	DB *sqlx.DB
}

func NewStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{DB: db}
}

const taskColumns = `id, user_id, title, description, priority, due_date, enable_reminder, created_at`

func (s *SQLStore) Create(ctx context.Context, userID int64, in TaskCreate) (Task, error) {
	if in.Priority == "" {
		in.Priority = PriorityMedium
	}
	if in.DueDate != nil {
		utc := in.DueDate.UTC()
		in.DueDate = &utc
	}

	var t Task
	err := s.DB.GetContext(ctx, &t, `
		INSERT INTO tasks (user_id, title, description, priority, due_date, enable_reminder)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+taskColumns,
		userID, in.Title, in.Description, in.Priority, in.DueDate, in.EnableReminder,
	)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

func (s *SQLStore) List(ctx context.Context, userID int64, f Filter) ([]Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1`
	args := []interface{}{userID}

	if f.Title != "" {
		args = append(args, "%"+f.Title+"%")
		query += fmt.Sprintf(" AND title ILIKE $%d", len(args))
	}
	if f.DueDate != nil {
		args = append(args, f.DueDate.UTC())
		query += fmt.Sprintf(" AND due_date::date = ($%d)::date", len(args))
	}
	if f.Priority != nil {
		args = append(args, *f.Priority)
		query += fmt.Sprintf(" AND priority = $%d", len(args))
	}

	query += " ORDER BY id"

	var out []Task
	if err := s.DB.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func (s *SQLStore) Get(ctx context.Context, userID, taskID int64) (Task, error) {
	var t Task
	err := s.DB.GetContext(ctx, &t,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 AND id = $2`,
		userID, taskID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *SQLStore) Update(ctx context.Context, userID, taskID int64, in TaskUpdate) (Task, error) {
	// Build the SET clause from the fields that are actually present.
	setParts := []string{}
	args := []interface{}{}

	add := func(col string, v interface{}) {
		args = append(args, v)
		setParts = append(setParts, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if in.Title != nil {
		add("title", *in.Title)
	}
	if in.Description != nil {
		add("description", *in.Description)
	}
	if in.Priority != nil {
		add("priority", *in.Priority)
	}
	if in.DueDate != nil {
		add("due_date", in.DueDate.UTC())
	}
	if in.EnableReminder != nil {
		add("enable_reminder", *in.EnableReminder)
	}

	if len(setParts) == 0 {
		// Nothing to change; the record is returned as-is.
		return s.Get(ctx, userID, taskID)
	}

	args = append(args, userID, taskID)
	query := fmt.Sprintf(
		"UPDATE tasks SET %s WHERE user_id = $%d AND id = $%d",
		strings.Join(setParts, ", "), len(args)-1, len(args),
	)

	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return Task{}, ErrNotFound
	}

	return s.Get(ctx, userID, taskID)
}

func (s *SQLStore) Delete(ctx context.Context, userID, taskID int64) (Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return Task{}, err
	}

	if _, err := s.DB.ExecContext(ctx,
		`DELETE FROM tasks WHERE user_id = $1 AND id = $2`, userID, taskID,
	); err != nil {
		return Task{}, fmt.Errorf("delete task: %w", err)
	}
	return t, nil
}
