package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrProjectFieldsRequired = errors.New("project code and name are required")
	ErrProjectCodeTaken      = errors.New("project code already exists")
	ErrNotProjectOwner       = errors.New("only the project owner can perform this action")
	ErrNotProjectMember      = errors.New("only project members can perform this action")
	ErrInvalidStatus         = errors.New("invalid status")
	ErrInvalidUserID         = errors.New("valid userId required")
	ErrInvalidProjectRole    = errors.New("role must be owner or member")
	ErrAlreadyProjectMember  = errors.New("user is already a member of this project")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	taskRepo    repository.TaskRepository
	now         func() time.Time
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, taskRepo repository.TaskRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		now:         time.Now,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	ActorID     uint64
	ProjectCode string
	Name        string
	Description string
	StartDate   *time.Time
	EndDate     *time.Time
	DueDate     *time.Time
}

// CreateProject creates a pending project owned by the actor.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	code := strings.TrimSpace(input.ProjectCode)
	name := strings.TrimSpace(input.Name)
	if code == "" || name == "" {
		return nil, ErrProjectFieldsRequired
	}

	if err := s.ensureCodeAvailable(ctx, code); err != nil {
		return nil, err
	}

	project := &models.Project{
		ProjectCode: code,
		Name:        name,
		Description: input.Description,
		CreatedByID: input.ActorID,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		DueDate:     input.DueDate,
		Status:      models.StatusPending,
		Members: []models.ProjectMember{
			{UserID: input.ActorID, Role: models.ProjectRoleOwner, JoinedAt: s.now()},
		},
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectCodeTaken
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.findProject(ctx, project.ID)
}

// UpdateProjectInput holds the fields to change. Nil fields are left as they
// are; the Clear flags null a date.
type UpdateProjectInput struct {
	ProjectCode    *string
	Name           *string
	Description    *string
	Status         *string
	StartDate      *time.Time
	ClearStartDate bool
	EndDate        *time.Time
	ClearEndDate   bool
	DueDate        *time.Time
	ClearDueDate   bool
}

// UpdateProject applies a partial update. Only the owner may update.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if !project.IsOwner(actorID) {
		return nil, ErrNotProjectOwner
	}

	if input.ProjectCode != nil {
		code := strings.TrimSpace(*input.ProjectCode)
		if code == "" {
			return nil, ErrProjectFieldsRequired
		}
		if code != project.ProjectCode {
			if err := s.ensureCodeAvailable(ctx, code); err != nil {
				return nil, err
			}
		}
		project.ProjectCode = code
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectFieldsRequired
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.Status != nil {
		status := models.NormalizeStatus(*input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		project.Status = status
	}
	project.StartDate = applyDate(project.StartDate, input.StartDate, input.ClearStartDate)
	project.EndDate = applyDate(project.EndDate, input.EndDate, input.ClearEndDate)
	project.DueDate = applyDate(project.DueDate, input.DueDate, input.ClearDueDate)

	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrProjectCodeTaken
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

func applyDate(current, next *time.Time, clear bool) *time.Time {
	if clear {
		return nil
	}
	if next != nil {
		return next
	}
	return current
}

// ListProjectsInput represents filters for listing projects.
type ListProjectsInput struct {
	UserID    uint64
	StartDate *time.Time
	EndDate   *time.Time
	TimeRange string
	Status    string
	Search    string
	Page      int
	Limit     int
}

// StatusCounts holds per-status project totals.
type StatusCounts struct {
	All        int64
	Pending    int64
	InProgress int64
	Delayed    int64
	Completed  int64
}

// ProjectPage is one page of a project listing plus dashboard counts.
type ProjectPage struct {
	Projects []models.Project
	Total    int64
	Page     int
	Limit    int
	Counts   StatusCounts
}

// ListProjects returns a page of the user's projects. Counts ignore status,
// search and pagination but honor the date filter.
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) (*ProjectPage, error) {
	dates := s.resolveDateRange(input)
	params := utils.NewPaginationParams(input.Page, input.Limit)

	filter := repository.ProjectFilter{
		MemberID:   input.UserID,
		StartDate:  dates,
		Search:     strings.TrimSpace(input.Search),
		Pagination: params,
	}
	if raw := strings.TrimSpace(input.Status); raw != "" {
		status := models.NormalizeStatus(raw)
		filter.Status = &status
	}

	projects, total, err := s.projectRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	byStatus, err := s.projectRepo.CountByStatus(ctx, input.UserID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	counts := StatusCounts{
		Pending:    byStatus[models.StatusPending],
		InProgress: byStatus[models.StatusInProgress],
		Delayed:    byStatus[models.StatusDelayed],
		Completed:  byStatus[models.StatusCompleted],
	}
	for _, n := range byStatus {
		counts.All += n
	}

	return &ProjectPage{
		Projects: projects,
		Total:    total,
		Page:     params.Page,
		Limit:    params.Limit,
		Counts:   counts,
	}, nil
}

// resolveDateRange picks the start date window. A time range token takes
// precedence over explicit bounds; an unknown token disables date filtering.
func (s *ProjectService) resolveDateRange(input ListProjectsInput) utils.DateRange {
	if input.TimeRange != "" {
		window, _ := utils.TimeRangeWindow(input.TimeRange, s.now())
		return window
	}
	return utils.DateRange{From: input.StartDate, To: input.EndDate, ToInclusive: true}
}

// ListAllProjects returns every project the user is a member of.
func (s *ProjectService) ListAllProjects(ctx context.Context, userID uint64) ([]models.Project, error) {
	projects, err := s.projectRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a project and its tasks. Only members may read it.
func (s *ProjectService) GetProject(ctx context.Context, projectID, actorID uint64) (*models.Project, []models.Task, error) {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}

	if !project.IsMember(actorID) {
		return nil, nil, ErrNotProjectMember
	}

	tasks, err := s.taskRepo.ListByProject(ctx, project.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return project, tasks, nil
}

// DeleteProject deletes a project with its tasks and members. Only the owner
// may delete.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uint64) error {
	project, err := s.findProject(ctx, projectID)
	if err != nil {
		return err
	}

	if !project.IsOwner(actorID) {
		return ErrNotProjectOwner
	}

	if err := s.projectRepo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// AddMemberInput represents input for adding a member to a project.
type AddMemberInput struct {
	ProjectID uint64
	ActorID   uint64
	UserID    uint64
	Role      models.ProjectRole
}

// AddMember appends a user to the project's members. Only the owner may add.
func (s *ProjectService) AddMember(ctx context.Context, input AddMemberInput) (*models.Project, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidUserID
	}
	role := input.Role
	if role == "" {
		role = models.ProjectRoleMember
	}
	if !role.Valid() {
		return nil, ErrInvalidProjectRole
	}

	project, err := s.findProject(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}

	if !project.IsOwner(input.ActorID) {
		return nil, ErrNotProjectOwner
	}

	if project.IsMember(input.UserID) {
		return nil, ErrAlreadyProjectMember
	}

	if _, err := s.userRepo.FindByID(ctx, input.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: project.ID,
		UserID:    input.UserID,
		Role:      role,
		JoinedAt:  s.now(),
	}
	if err := s.projectRepo.AddMember(ctx, member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyProjectMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return s.findProject(ctx, project.ID)
}

func (s *ProjectService) findProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

func (s *ProjectService) ensureCodeAvailable(ctx context.Context, code string) error {
	if _, err := s.projectRepo.FindByCode(ctx, code); err == nil {
		return ErrProjectCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check project code: %w", err)
	}
	return nil
}
