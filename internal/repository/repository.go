package repository

import (
	"context"

	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update persists every column of user
	Update(ctx context.Context, user *models.User) error

	// List returns all users, newest first
	List(ctx context.Context) ([]models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a project together with its initial members
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID with its members and their users
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// FindByCode finds a project by its unique code
	FindByCode(ctx context.Context, code string) (*models.Project, error)

	// Update updates the project columns, never its members
	Update(ctx context.Context, project *models.Project) error

	// Delete deletes a project and all related data
	Delete(ctx context.Context, id uint64) error

	// List retrieves a page of projects visible to a member
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)

	// CountByStatus counts a member's projects per status within a date range
	CountByStatus(ctx context.Context, memberID uint64, dates utils.DateRange) (map[models.ProjectStatus]int64, error)

	// ListByMember lists every project the user is a member of
	ListByMember(ctx context.Context, userID uint64) ([]models.Project, error)

	// AddMember adds a member to a project
	AddMember(ctx context.Context, member *models.ProjectMember) error

	// FindMember finds a specific project member
	FindMember(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	MemberID   uint64
	StartDate  utils.DateRange
	Status     *models.ProjectStatus
	Search     string
	Pagination utils.PaginationParams
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// CreateWithActivity creates a task and its first activity atomically
	CreateWithActivity(ctx context.Context, task *models.Task, activity *models.TaskActivity) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// ListByProject lists a project's tasks, newest first
	ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error)

	// UpdateWithActivity updates a task and records an activity atomically
	UpdateWithActivity(ctx context.Context, task *models.Task, activity *models.TaskActivity) error

	// Delete deletes a task and its activities
	Delete(ctx context.Context, id uint64) error

	// ListActivities lists a task's activities, newest first
	ListActivities(ctx context.Context, taskID uint64) ([]models.TaskActivity, error)
}
