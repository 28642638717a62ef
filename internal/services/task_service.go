package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projecthub/projecthub-api/internal/constants"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrAssigneeNotMember      = errors.New("assignee must be a project member")
	ErrTextRequired           = errors.New("text is required")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskGenerator proposes task drafts for a project from free text.
type TaskGenerator interface {
	GenerateTasks(ctx context.Context, project *models.Project, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	generator   TaskGenerator
	now         func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil, which
// disables task generation.
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		generator:   generator,
		now:         time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	ActorID     uint64
	Title       string
	Description string
	AssigneeID  *uint64
	DueDate     *time.Time
	Status      string
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *string
	AssigneeID    *uint64
	ClearAssignee bool
	DueDate       *time.Time
	ClearDueDate  bool
}

// CreateTask creates a task in a project the actor belongs to and records a
// created activity.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	project, err := s.memberProject(ctx, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	status := models.StatusPending
	if input.Status != "" {
		status = models.NormalizeStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
	}

	if input.AssigneeID != nil && !project.IsMember(*input.AssigneeID) {
		return nil, ErrAssigneeNotMember
	}

	task := &models.Task{
		ProjectID:   project.ID,
		Title:       title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		DueDate:     input.DueDate,
		Status:      status,
		CreatedByID: input.ActorID,
	}
	activity := &models.TaskActivity{
		UserID:      input.ActorID,
		Action:      models.ActivityCreated,
		Description: fmt.Sprintf("Task %q was created", title),
	}

	if err := s.taskRepo.CreateWithActivity(ctx, task, activity); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID, "Assignee", "CreatedBy")
}

// ListTasks returns a project's tasks, newest first. Only members may list.
func (s *TaskService) ListTasks(ctx context.Context, projectID, actorID uint64) ([]models.Task, error) {
	if _, err := s.memberProject(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// UpdateTask updates an existing task and records which fields changed.
func (s *TaskService) UpdateTask(ctx context.Context, taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, project, err := s.memberTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	var changed []string
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		task.Description = *input.Description
		changed = append(changed, "description")
	}
	if input.Status != nil {
		status := models.NormalizeStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = status
		changed = append(changed, "status")
	}
	if input.ClearAssignee {
		task.AssigneeID = nil
		changed = append(changed, "assignee")
	} else if input.AssigneeID != nil {
		if !project.IsMember(*input.AssigneeID) {
			return nil, ErrAssigneeNotMember
		}
		task.AssigneeID = input.AssigneeID
		changed = append(changed, "assignee")
	}
	if input.ClearDueDate {
		task.DueDate = nil
		changed = append(changed, "dueDate")
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
		changed = append(changed, "dueDate")
	}

	description := "Task updated"
	if len(changed) > 0 {
		description = "Updated " + strings.Join(changed, ", ")
	}
	activity := &models.TaskActivity{
		UserID:      actorID,
		Action:      models.ActivityUpdated,
		Description: description,
	}

	if err := s.taskRepo.UpdateWithActivity(ctx, task, activity); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID, "Assignee", "CreatedBy")
}

// DeleteTask deletes a task and its activity log. Only project members may
// delete.
func (s *TaskService) DeleteTask(ctx context.Context, taskID, actorID uint64) error {
	task, _, err := s.memberTask(ctx, taskID, actorID)
	if err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// ListActivities returns a task's activity log, newest first.
func (s *TaskService) ListActivities(ctx context.Context, taskID, actorID uint64) ([]models.TaskActivity, error) {
	task, _, err := s.memberTask(ctx, taskID, actorID)
	if err != nil {
		return nil, err
	}

	activities, err := s.taskRepo.ListActivities(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return activities, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	ProjectID uint64
	ActorID   uint64
	Text      string
}

// GenerateTasks uses AI to draft tasks for a project. Drafts are not saved.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	project, err := s.memberProject(ctx, input.ProjectID, input.ActorID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrTextRequired
	}
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasks(ctx, project, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}

		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// memberProject loads a project and verifies the user belongs to it
func (s *TaskService) memberProject(ctx context.Context, projectID, userID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if !project.IsMember(userID) {
		return nil, ErrNotProjectMember
	}

	return project, nil
}

// memberTask loads a task and its project and verifies the user belongs to
// the project
func (s *TaskService) memberTask(ctx context.Context, taskID, userID uint64) (*models.Task, *models.Project, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.memberProject(ctx, task.ProjectID, userID)
	if err != nil {
		return nil, nil, err
	}

	return task, project, nil
}
