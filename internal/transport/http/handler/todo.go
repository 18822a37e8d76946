package handler

import (
	"bytes"
	"errors"
	"net/http"

	todoapp "github.com/astro-web3/todo-service/internal/app/todo"
	tododomain "github.com/astro-web3/todo-service/internal/domain/todo"
	"github.com/astro-web3/todo-service/pkg/tracer"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.opentelemetry.io/otel/attribute"
)

// ContextKeyUserID holds the authenticated subject set by the auth middleware.
const ContextKeyUserID = "userID"

type createTodoRequest struct {
	Name    string `json:"name" binding:"required"`
	DueDate string `json:"dueDate"`
}

type TodoHandler struct {
	commandService *todoapp.CommandService
	queryService   *todoapp.QueryService
}

func NewTodoHandler(commandService *todoapp.CommandService, queryService *todoapp.QueryService) *TodoHandler {
	return &TodoHandler{
		commandService: commandService,
		queryService:   queryService,
	}
}

func (h *TodoHandler) ListTodos(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.ListTodos")
	defer span.End()

	todos, err := h.queryService.ListTodos(ctx, c.GetString(ContextKeyUserID))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": todos})
}

func (h *TodoHandler) CreateTodo(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.CreateTodo")
	defer span.End()

	var req createTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	t, err := h.commandService.CreateTodo(ctx, c.GetString(ContextKeyUserID), req.Name, req.DueDate)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": t})
}

func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.UpdateTodo")
	defer span.End()

	todoID := c.Param("todoId")
	span.SetAttributes(attribute.String("todo.id", todoID))

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	// An empty body is an update with no fields, which the compiler rejects
	// with its own message.
	fields := tododomain.Fields{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := binding.JSON.BindBody(raw, &fields); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
			return
		}
	}

	if err := h.commandService.UpdateTodo(ctx, c.GetString(ContextKeyUserID), todoID, fields); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "transport.http.DeleteTodo")
	defer span.End()

	todoID := c.Param("todoId")
	span.SetAttributes(attribute.String("todo.id", todoID))

	if err := h.commandService.DeleteTodo(ctx, c.GetString(ContextKeyUserID), todoID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func writeError(c *gin.Context, err error) {
	var updateErr *tododomain.UpdateError
	switch {
	case errors.As(err, &updateErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": updateErr.Error()})
	case errors.Is(err, tododomain.ErrTodoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, tododomain.ErrMissingName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
