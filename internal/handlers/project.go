package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/dto"
	apierrors "github.com/projecthub/projecthub-api/internal/errors"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/services"
	"github.com/projecthub/projecthub-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
	logger         *slog.Logger
}

func NewProjectHandler(projectService *services.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		ProjectCode string           `json:"projectCode"`
		Name        string           `json:"name"`
		Description string           `json:"description"`
		StartDate   dto.OptionalDate `json:"startDate"`
		EndDate     dto.OptionalDate `json:"endDate"`
		DueDate     dto.OptionalDate `json:"dueDate"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		ActorID:     userID,
		ProjectCode: req.ProjectCode,
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate.Value,
		EndDate:     req.EndDate.Value,
		DueDate:     req.DueDate.Value,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Project created successfully",
		"project": dto.ToProjectDTO(*project),
	})
}

// ListProjects returns a filtered page of the user's projects with status counts
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	startDate, ok := queryDate(c, "startDate")
	if !ok {
		return
	}
	endDate, ok := queryDate(c, "endDate")
	if !ok {
		return
	}

	search := c.Query("search")
	if search == "" {
		search = c.Query("q")
	}
	params := utils.GetPaginationParams(c)

	page, err := h.projectService.ListProjects(c.Request.Context(), services.ListProjectsInput{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
		TimeRange: c.Query("timeRange"),
		Status:    c.Query("status"),
		Search:    search,
		Page:      params.Page,
		Limit:     params.Limit,
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectListResponse{
		Total:           page.Total,
		Page:            page.Page,
		Limit:           page.Limit,
		Projects:        dto.ToProjectDTOs(page.Projects),
		AllCount:        page.Counts.All,
		PendingCount:    page.Counts.Pending,
		InProgressCount: page.Counts.InProgress,
		DelayedCount:    page.Counts.Delayed,
		CompletedCount:  page.Counts.Completed,
	})
}

// ListAllProjects returns all of the user's projects without pagination
func (h *ProjectHandler) ListAllProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListAllProjects(c.Request.Context(), userID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"projects": dto.ToProjectDTOs(projects),
	})
}

// GetProject returns a project together with its tasks
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	project, tasks, err := h.projectService.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ProjectDetailResponse{
		Project: dto.ToProjectDTO(*project),
		Tasks:   dto.ToTaskDTOs(tasks),
	})
}

// UpdateProject applies a partial update; null dates are cleared
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		ProjectCode *string          `json:"projectCode"`
		Name        *string          `json:"name"`
		Description *string          `json:"description"`
		Status      *string          `json:"status"`
		StartDate   dto.OptionalDate `json:"startDate"`
		EndDate     dto.OptionalDate `json:"endDate"`
		DueDate     dto.OptionalDate `json:"dueDate"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, userID, services.UpdateProjectInput{
		ProjectCode:    req.ProjectCode,
		Name:           req.Name,
		Description:    req.Description,
		Status:         req.Status,
		StartDate:      req.StartDate.Value,
		ClearStartDate: req.StartDate.Clear(),
		EndDate:        req.EndDate.Value,
		ClearEndDate:   req.EndDate.Clear(),
		DueDate:        req.DueDate.Value,
		ClearDueDate:   req.DueDate.Clear(),
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project updated successfully",
		"project": dto.ToProjectDTO(*project),
	})
}

// DeleteProject removes a project with its tasks and memberships
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Project and associated tasks deleted successfully",
	})
}

// AddMember adds a user to the project
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project")
	if !ok {
		return
	}

	type AddMemberRequest struct {
		UserID dto.OptionalID `json:"userId"`
		Role   string         `json:"role"`
	}

	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	if !req.UserID.Valid || req.UserID.Value == nil {
		h.respondProjectError(c, services.ErrInvalidUserID)
		return
	}

	project, err := h.projectService.AddMember(c.Request.Context(), services.AddMemberInput{
		ProjectID: projectID,
		ActorID:   userID,
		UserID:    *req.UserID.Value,
		Role:      models.ProjectRole(req.Role),
	})
	if err != nil {
		h.respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Member added successfully",
		"project": dto.ToProjectDTO(*project),
	})
}

// queryDate parses an optional date query parameter or answers 400.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := utils.ParseDate(raw)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &t, true
}

func (h *ProjectHandler) respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrNotProjectOwner),
		errors.Is(err, services.ErrNotProjectMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectCodeTaken):
		apierrors.Conflict(c, "Project code already exists", "Choose a different project code.")
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, "User is already a member of this project", "")
	case errors.Is(err, services.ErrProjectFieldsRequired),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidUserID),
		errors.Is(err, services.ErrInvalidProjectRole):
		apierrors.BadRequest(c, err.Error())
	default:
		serverError(c, h.logger, err)
	}
}
