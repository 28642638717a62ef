package dto

import (
	"time"

	"github.com/projecthub/projecthub-api/internal/models"
)

// MemberDTO represents a project membership
type MemberDTO struct {
	UserID   uint64             `json:"userId"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joinedAt"`
	User     *UserSummaryDTO    `json:"user,omitempty"`
}

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64               `json:"id"`
	ProjectCode string               `json:"projectCode"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	CreatedBy   uint64               `json:"createdBy"`
	StartDate   *time.Time           `json:"startDate"`
	EndDate     *time.Time           `json:"endDate"`
	DueDate     *time.Time           `json:"dueDate"`
	Status      models.ProjectStatus `json:"status"`
	Members     []MemberDTO          `json:"members"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// ProjectDetailResponse is a project together with its tasks
type ProjectDetailResponse struct {
	Project ProjectDTO `json:"project"`
	Tasks   []TaskDTO  `json:"tasks"`
}

// ProjectListResponse is one page of projects plus dashboard counts
type ProjectListResponse struct {
	Total           int64        `json:"total"`
	Page            int          `json:"page"`
	Limit           int          `json:"limit"`
	Projects        []ProjectDTO `json:"projects"`
	AllCount        int64        `json:"allCount"`
	PendingCount    int64        `json:"pendingCount"`
	InProgressCount int64        `json:"inProgressCount"`
	DelayedCount    int64        `json:"delayedCount"`
	CompletedCount  int64        `json:"completedCount"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	dto := ProjectDTO{
		ID:          project.ID,
		ProjectCode: project.ProjectCode,
		Name:        project.Name,
		Description: project.Description,
		CreatedBy:   project.CreatedByID,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		DueDate:     project.DueDate,
		Status:      project.Status,
		Members:     make([]MemberDTO, len(project.Members)),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	for i, m := range project.Members {
		dto.Members[i] = MemberDTO{
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
			User:     ToUserSummaryDTO(&m.User),
		}
	}

	return dto
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	out := make([]ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = ToProjectDTO(p)
	}
	return out
}
