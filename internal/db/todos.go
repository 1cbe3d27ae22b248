package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/todo/internal/models"
)

const todoColumns = "id, title, complete_by, created_at, updated_at"

// CreateTodo creates a new todo
func (db *DB) CreateTodo(ctx context.Context, title string, completeBy time.Time) (*models.Todo, error) {
	result, err := db.ExecContext(ctx, `
		INSERT INTO todos (title, complete_by) VALUES (?, ?)
	`, title, completeBy.UTC())
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTodo(ctx, id)
}

// GetTodo retrieves a todo by ID
func (db *DB) GetTodo(ctx context.Context, id int64) (*models.Todo, error) {
	t := &models.Todo{}
	err := db.QueryRowContext(ctx, `
		SELECT `+todoColumns+` FROM todos WHERE id = ?
	`, id).Scan(&t.ID, &t.Title, &t.CompleteBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListTodos returns all todos, soonest due first
func (db *DB) ListTodos(ctx context.Context) ([]models.Todo, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+todoColumns+`
		FROM todos
		ORDER BY complete_by ASC, created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []models.Todo
	for rows.Next() {
		var t models.Todo
		if err := rows.Scan(&t.ID, &t.Title, &t.CompleteBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}
	return todos, rows.Err()
}

// UpdateTodo updates a todo. It returns sql.ErrNoRows when the todo does not exist.
func (db *DB) UpdateTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	result, err := db.ExecContext(ctx, `
		UPDATE todos SET title = ?, complete_by = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, in.Title, in.CompleteBy.UTC(), in.ID)
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("todo %d: %w", in.ID, sql.ErrNoRows)
	}

	return db.GetTodo(ctx, in.ID)
}

// SaveTodo creates the todo when in.ID is zero and updates it otherwise
func (db *DB) SaveTodo(ctx context.Context, in models.TodoInput) (*models.Todo, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.New("todo title is empty")
	}
	in.Title = title

	if in.ID == 0 {
		return db.CreateTodo(ctx, in.Title, in.CompleteBy)
	}
	return db.UpdateTodo(ctx, in)
}

// DeleteTodo deletes a todo
func (db *DB) DeleteTodo(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	return err
}

// TodoCount returns the number of todos
func (db *DB) TodoCount(ctx context.Context) (int, error) {
	var count int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM todos").Scan(&count)
	return count, err
}
