package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/dto"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
	logger      *slog.Logger
}

func NewTaskHandler(taskService *services.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		logger:      logger,
	}
}

// CreateTask creates a task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		Title       string           `json:"title"`
		Description string           `json:"description"`
		Assignee    dto.OptionalID   `json:"assignee"`
		DueDate     dto.OptionalDate `json:"dueDate"`
		Status      string           `json:"status"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !req.Assignee.Valid && req.Assignee.Set {
		apierrors.BadRequest(c, "Invalid assignee")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   projectID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.Assignee.Value,
		DueDate:     req.DueDate.Value,
		Status:      req.Status,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Task created successfully",
		"task":    dto.ToTaskDTO(*task),
	})
}

// ListTasks returns the tasks of a project, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), projectID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   dto.ToTaskDTOs(tasks),
	})
}

// UpdateTask applies a partial update; a null assignee or dueDate clears it
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	type UpdateTaskRequest struct {
		Title       *string          `json:"title"`
		Description *string          `json:"description"`
		Status      *string          `json:"status"`
		Assignee    dto.OptionalID   `json:"assignee"`
		DueDate     dto.OptionalDate `json:"dueDate"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !req.Assignee.Valid && req.Assignee.Set {
		apierrors.BadRequest(c, "Invalid assignee")
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), taskID, userID, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		AssigneeID:    req.Assignee.Value,
		ClearAssignee: req.Assignee.Clear(),
		DueDate:       req.DueDate.Value,
		ClearDueDate:  req.DueDate.Clear(),
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task updated successfully",
		"task":    dto.ToTaskDTO(*task),
	})
}

// DeleteTask removes a task and its activity log
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), taskID, userID); err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Task deleted successfully",
	})
}

// ListActivities returns the history of a task
func (h *TaskHandler) ListActivities(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id", "task")
	if !ok {
		return
	}

	activities, err := h.taskService.ListActivities(c.Request.Context(), taskID, userID)
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"activities": dto.ToActivityDTOs(activities),
	})
}

// GenerateTasks asks the AI service for task drafts; nothing is saved
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		ProjectID: projectID,
		ActorID:   userID,
		Text:      req.Text,
	})
	if err != nil {
		h.respondTaskError(c, err)
		return
	}

	out := make([]dto.GeneratedTaskDTO, len(drafts))
	for i, d := range drafts {
		out[i] = dto.GeneratedTaskDTO{
			Title:       d.Title,
			Description: d.Description,
			DueDate:     d.DueDate,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tasks":   out,
	})
}

func (h *TaskHandler) respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrAssigneeNotMember),
		errors.Is(err, services.ErrTextRequired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.RespondWithError(c, apierrors.NewAPIError(http.StatusUnprocessableEntity, apierrors.TypeValidation, err.Error()))
	default:
		serverError(c, h.logger, err)
	}
}
