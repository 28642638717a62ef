package dto

import (
	"time"

	"github.com/projecthub/projecthub-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64               `json:"id"`
	ProjectID   uint64               `json:"project"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status"`
	DueDate     *time.Time           `json:"dueDate"`
	AssigneeID  *uint64              `json:"assigneeId"`
	Assignee    *UserSummaryDTO      `json:"assignee"`
	CreatedByID uint64               `json:"createdById"`
	CreatedBy   *UserSummaryDTO      `json:"createdBy,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ActivityDTO represents an entry in a task's history
type ActivityDTO struct {
	ID          uint64          `json:"id"`
	TaskID      uint64          `json:"task"`
	Action      string          `json:"action"`
	Description string          `json:"description"`
	User        *UserSummaryDTO `json:"user,omitempty"`
	UserID      uint64          `json:"userId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// GeneratedTaskDTO is an AI proposed task draft
type GeneratedTaskDTO struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:          task.ID,
		ProjectID:   task.ProjectID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		AssigneeID:  task.AssigneeID,
		Assignee:    ToUserSummaryDTO(task.Assignee),
		CreatedByID: task.CreatedByID,
		CreatedBy:   ToUserSummaryDTO(&task.CreatedBy),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return out
}

// ToActivityDTO converts a TaskActivity model to ActivityDTO
func ToActivityDTO(activity models.TaskActivity) ActivityDTO {
	return ActivityDTO{
		ID:          activity.ID,
		TaskID:      activity.TaskID,
		Action:      activity.Action,
		Description: activity.Description,
		User:        ToUserSummaryDTO(&activity.User),
		UserID:      activity.UserID,
		CreatedAt:   activity.CreatedAt,
	}
}

// ToActivityDTOs converts a slice of activities
func ToActivityDTOs(activities []models.TaskActivity) []ActivityDTO {
	out := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		out[i] = ToActivityDTO(a)
	}
	return out
}
