package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"saasterkit/internal/types"
)

// todoColumns is the canonical scan order for todo_items rows.
const todoColumns = `id, title, description, category, due_date, done, user_id, created_at, updated_at`

// TodoRepo provides CRUD access to todo items. Handlers perform no business
// logic on top of it: every operation is a single store round trip.
type TodoRepo struct {
	db     DBTX
	logger *slog.Logger
}

// NewTodoRepo creates a new TodoRepo backed by the given database
// connection (pool or transaction).
func NewTodoRepo(db DBTX, logger *slog.Logger) *TodoRepo {
	if logger == nil {
		logger = slog.Default()
	}
	return &TodoRepo{db: db, logger: logger}
}

// scanTodo reads one todo row in todoColumns order.
func scanTodo(row pgx.Row) (*types.TodoItem, error) {
	var t types.TodoItem
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Category,
		&t.DueDate, &t.Done, &t.UserID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all todo items, newest first.
func (r *TodoRepo) List(ctx context.Context) ([]*types.TodoItem, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+todoColumns+` FROM todo_items ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list todo items", err)
	}
	defer rows.Close()

	items := make([]*types.TodoItem, 0)
	for rows.Next() {
		item, err := scanTodo(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan todo item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to read todo items", err)
	}
	return items, nil
}

// GetByID returns a single todo item. A missing row is a not_found error.
func (r *TodoRepo) GetByID(ctx context.Context, id string) (*types.TodoItem, error) {
	item, err := scanTodo(r.db.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todo_items WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundTodo(id, err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to get todo item", err)
	}
	return item, nil
}

// Create inserts a new todo item and returns the stored row.
func (r *TodoRepo) Create(ctx context.Context, item *types.TodoItem) (*types.TodoItem, error) {
	created, err := scanTodo(r.db.QueryRow(ctx,
		`INSERT INTO todo_items (id, title, description, category, due_date, done, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+todoColumns,
		uuid.NewString(), item.Title, item.Description, item.Category,
		item.DueDate, item.Done, item.UserID,
	))
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to create todo item", err)
	}
	return created, nil
}

// Update replaces all mutable fields of an existing todo item and returns
// the stored row. A missing row is a not_found error.
func (r *TodoRepo) Update(ctx context.Context, id string, item *types.TodoItem) (*types.TodoItem, error) {
	updated, err := scanTodo(r.db.QueryRow(ctx,
		`UPDATE todo_items
		 SET title = $2, description = $3, category = $4, due_date = $5,
		     done = $6, user_id = $7, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+todoColumns,
		id, item.Title, item.Description, item.Category,
		item.DueDate, item.Done, item.UserID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundTodo(id, err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to update todo item", err)
	}
	return updated, nil
}

// Delete removes a todo item and returns the deleted row. A missing row is
// a not_found error, so a repeated delete fails cleanly instead of
// surfacing a store-level fault.
func (r *TodoRepo) Delete(ctx context.Context, id string) (*types.TodoItem, error) {
	deleted, err := scanTodo(r.db.QueryRow(ctx,
		`DELETE FROM todo_items WHERE id = $1 RETURNING `+todoColumns, id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFoundTodo(id, err)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to delete todo item", err)
	}
	return deleted, nil
}

func notFoundTodo(id string, err error) *types.AppError {
	return types.NewAppError(
		types.ErrCodeNotFoundTodo,
		fmt.Sprintf("no todo item with id %q", id),
		err,
	)
}
