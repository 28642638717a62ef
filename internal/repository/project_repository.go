package repository

import (
	"context"
	"strings"

	"github.com/projecthub/projecthub-api/internal/database"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create inserts the project and its members in one transaction
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		members := project.Members
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return err
		}

		for i := range members {
			members[i].ProjectID = project.ID
			if err := tx.Omit(clause.Associations).Create(&members[i]).Error; err != nil {
				return err
			}
		}
		project.Members = members

		return nil
	})
}

// withMembers preloads members in insertion order along with their users
func withMembers(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("project_members.id ASC")
		}).
		Preload("Members.User")
}

// FindByID finds a project by ID with its members and their users
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Scopes(withMembers).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByCode finds a project by its unique code
func (r *GormProjectRepository) FindByCode(ctx context.Context, code string) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).Where("project_code = ?", code).First(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates the project columns, never its members
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// Delete deletes a project and all related data in a transaction
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete the activity log of every task in the project
		taskIDs := tx.Model(&models.Task{}).Select("id").Where("project_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&models.TaskActivity{}).Error; err != nil {
			return err
		}

		// Delete all tasks in the project
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		// Delete all members
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}

		// Delete project
		if err := tx.Delete(&models.Project{}, id).Error; err != nil {
			return err
		}

		return nil
	})
}

// memberOf restricts projects to those userID belongs to
func memberOf(userID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		memberships := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.ProjectMember{}).
			Select("project_id").
			Where("user_id = ?", userID)
		return db.Where("projects.id IN (?)", memberships)
	}
}

// startDateWithin bounds projects.start_date by r
func startDateWithin(r utils.DateRange) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if r.From != nil {
			db = db.Where("projects.start_date >= ?", *r.From)
		}
		if r.To != nil {
			if r.ToInclusive {
				db = db.Where("projects.start_date <= ?", *r.To)
			} else {
				db = db.Where("projects.start_date < ?", *r.To)
			}
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// matching filters projects whose code, name or description contains term,
// ignoring case
func matching(term string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		return db.Where(
			"(LOWER(projects.project_code) LIKE ? ESCAPE '!' OR LOWER(projects.name) LIKE ? ESCAPE '!' OR LOWER(projects.description) LIKE ? ESCAPE '!')",
			pattern, pattern, pattern,
		)
	}
}

// List retrieves a page of projects visible to a member
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	scopes := []func(*gorm.DB) *gorm.DB{
		memberOf(filter.MemberID),
		startDateWithin(filter.StartDate),
	}
	if filter.Status != nil {
		status := *filter.Status
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("projects.status = ?", status)
		})
	}
	if filter.Search != "" {
		scopes = append(scopes, matching(filter.Search))
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Project{}).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Scopes(scopes...).
		Scopes(withMembers, database.NewestFirst("projects"), database.Paginate(filter.Pagination)).
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

type statusCount struct {
	Status models.ProjectStatus
	Count  int64
}

// CountByStatus counts a member's projects per status within a date range
func (r *GormProjectRepository) CountByStatus(ctx context.Context, memberID uint64, dates utils.DateRange) (map[models.ProjectStatus]int64, error) {
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Scopes(memberOf(memberID), startDateWithin(dates)).
		Select("projects.status AS status, COUNT(*) AS count").
		Group("projects.status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[models.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// ListByMember lists every project the user is a member of
func (r *GormProjectRepository) ListByMember(ctx context.Context, userID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Scopes(memberOf(userID), withMembers, database.NewestFirst("projects")).
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// AddMember adds a member to a project
func (r *GormProjectRepository) AddMember(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(member).Error
}

// FindMember finds a specific project member
func (r *GormProjectRepository) FindMember(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}
