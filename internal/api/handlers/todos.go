package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"saasterkit/internal/core"
	"saasterkit/internal/types"
)

// TodoStore is the data access contract the todo handler depends on.
type TodoStore interface {
	List(ctx context.Context) ([]*types.TodoItem, error)
	GetByID(ctx context.Context, id string) (*types.TodoItem, error)
	Create(ctx context.Context, item *types.TodoItem) (*types.TodoItem, error)
	Update(ctx context.Context, id string, item *types.TodoItem) (*types.TodoItem, error)
	Delete(ctx context.Context, id string) (*types.TodoItem, error)
}

// TodoHandler exposes CRUD over todo items. All routes require an
// authenticated session; the session middleware is applied by the router
// wiring, not here.
type TodoHandler struct {
	todos     TodoStore
	validator *core.Validator
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todos TodoStore, validator *core.Validator) *TodoHandler {
	return &TodoHandler{todos: todos, validator: validator}
}

// RegisterRoutes mounts the todo CRUD endpoints.
func (h *TodoHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// todoRequest is the write payload for create and update. Due dates are
// RFC 3339 strings on the wire and parsed after validation.
type todoRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category" validate:"required,oneof=WORK PERSONAL SHOPPING OTHER"`
	DueDate     string  `json:"dueDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Done        *bool   `json:"done"`
	UserID      string  `json:"userId" validate:"required"`
}

// toItem converts a validated request into a domain item. Done defaults
// to false when omitted.
func (req *todoRequest) toItem() *types.TodoItem {
	dueDate, _ := time.Parse(time.RFC3339, req.DueDate)
	done := false
	if req.Done != nil {
		done = *req.Done
	}
	return &types.TodoItem{
		Title:       req.Title,
		Description: req.Description,
		Category:    types.TodoCategory(req.Category),
		DueDate:     dueDate,
		Done:        done,
		UserID:      req.UserID,
	}
}

// decodeTodoRequest reads and validates a write payload.
func (h *TodoHandler) decodeTodoRequest(w http.ResponseWriter, r *http.Request) (*todoRequest, error) {
	var req todoRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		return nil, err
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns all todo items.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.todos.List(r.Context())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, items)
}

// Get returns a single todo item by id.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.todos.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, item)
}

// Create validates the payload and inserts a new todo item.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeTodoRequest(w, r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	created, err := h.todos.Create(r.Context(), req.toItem())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusCreated, created)
}

// Update validates the payload and replaces an existing todo item.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodeTodoRequest(w, r)
	if err != nil {
		core.Error(w, r, err)
		return
	}
	updated, err := h.todos.Update(r.Context(), chi.URLParam(r, "id"), req.toItem())
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, updated)
}

// Delete removes a todo item and echoes the deleted record.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.todos.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.Error(w, r, err)
		return
	}
	core.JSON(w, r, http.StatusOK, deleted)
}
