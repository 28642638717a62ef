package repository

import (
	"context"

	"github.com/projecthub/projecthub-api/internal/database"
	"github.com/projecthub/projecthub-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// CreateWithActivity creates a task and its first activity atomically
func (r *GormTaskRepository) CreateWithActivity(ctx context.Context, task *models.Task, activity *models.TaskActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(task).Error; err != nil {
			return err
		}

		activity.TaskID = task.ID
		return tx.Omit(clause.Associations).Create(activity).Error
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject lists a project's tasks with assignee and creator, newest first
func (r *GormTaskRepository) ListByProject(ctx context.Context, projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignee").
		Preload("CreatedBy").
		Where("project_id = ?", projectID).
		Scopes(database.NewestFirst("tasks")).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateWithActivity updates a task and records an activity atomically
func (r *GormTaskRepository) UpdateWithActivity(ctx context.Context, task *models.Task, activity *models.TaskActivity) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(task).Error; err != nil {
			return err
		}

		activity.TaskID = task.ID
		return tx.Omit(clause.Associations).Create(activity).Error
	})
}

// Delete deletes a task and its activities in a transaction
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskActivity{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		return nil
	})
}

// ListActivities lists a task's activities with their actor, newest first
func (r *GormTaskRepository) ListActivities(ctx context.Context, taskID uint64) ([]models.TaskActivity, error) {
	var activities []models.TaskActivity
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("task_id = ?", taskID).
		Scopes(database.NewestFirst("task_activities")).
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}
