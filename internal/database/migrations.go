package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes used by listing and dashboard queries.
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Project listing filters on start date and status
		{"projects", "idx_projects_start_date", "start_date"},
		{"projects", "idx_projects_status", "status"},
		{"projects", "idx_projects_created_at", "created_at"},

		// Kanban board ordering
		{"tasks", "idx_tasks_project_created_at", "project_id, created_at"},

		// Activity feed ordering
		{"task_activities", "idx_task_activities_task_created_at", "task_id, created_at"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", slog.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", slog.String("index", idx.name), slog.String("table", idx.table))
	}

	return nil
}
