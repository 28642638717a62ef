package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/testutil"
	"github.com/projecthub/projecthub-api/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func createProject(t *testing.T, repo ProjectRepository, owner *models.User, code, name string, start time.Time, status models.ProjectStatus) *models.Project {
	t.Helper()

	project := &models.Project{
		ProjectCode: code,
		Name:        name,
		Description: "description of " + name,
		CreatedByID: owner.ID,
		StartDate:   &start,
		Status:      status,
		Members: []models.ProjectMember{
			{UserID: owner.ID, Role: models.ProjectRoleOwner, JoinedAt: time.Now()},
		},
	}
	require.NoError(t, repo.Create(context.Background(), project))
	return project
}

func TestProjectRepository_CreateAndFind(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	project := createProject(t, repo, owner, "P-1", "Alpha", time.Now(), models.StatusPending)

	found, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, found.Members, 1)
	assert.Equal(t, owner.ID, found.Members[0].UserID)
	assert.Equal(t, models.ProjectRoleOwner, found.Members[0].Role)
	assert.Equal(t, "owner@example.com", found.Members[0].User.Email)

	byCode, err := repo.FindByCode(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, project.ID, byCode.ID)

	_, err = repo.FindByCode(ctx, "missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProjectRepository_MembersKeepInsertionOrder(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	second := testutil.CreateUser(t, db, "Second", "second@example.com")
	third := testutil.CreateUser(t, db, "Third", "third@example.com")
	project := createProject(t, repo, owner, "P-1", "Alpha", time.Now(), models.StatusPending)

	for _, u := range []*models.User{third, second} {
		require.NoError(t, repo.AddMember(ctx, &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    u.ID,
			Role:      models.ProjectRoleMember,
			JoinedAt:  time.Now(),
		}))
	}

	found, err := repo.FindByID(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, found.Members, 3)
	assert.Equal(t, owner.ID, found.Members[0].UserID)
	assert.Equal(t, third.ID, found.Members[1].UserID)
	assert.Equal(t, second.ID, found.Members[2].UserID)

	err = repo.AddMember(ctx, &models.ProjectMember{ProjectID: project.ID, UserID: third.ID, Role: models.ProjectRoleMember})
	assert.Error(t, err, "membership is unique per project and user")
}

func TestProjectRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")

	jan := time.Date(2026, time.January, 10, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	mar := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	createProject(t, repo, alice, "WEB-1", "Website Redesign", jan, models.StatusCompleted)
	createProject(t, repo, alice, "APP-2", "Mobile App", feb, models.StatusInProgress)
	createProject(t, repo, alice, "OPS_3", "Ops 100% uptime", mar, models.StatusCompleted)
	createProject(t, repo, bob, "BOB-1", "Website for Bob", feb, models.StatusCompleted)

	t.Run("membership scoped and newest first", func(t *testing.T) {
		projects, total, err := repo.List(ctx, ProjectFilter{MemberID: alice.ID, Pagination: utils.NewPaginationParams(1, 20)})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, projects, 3)
		assert.Equal(t, "OPS_3", projects[0].ProjectCode)
		assert.Equal(t, "WEB-1", projects[2].ProjectCode)
		assert.Len(t, projects[0].Members, 1)
	})

	t.Run("status", func(t *testing.T) {
		status := models.StatusCompleted
		projects, total, err := repo.List(ctx, ProjectFilter{MemberID: alice.ID, Status: &status, Pagination: utils.NewPaginationParams(1, 20)})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		for _, p := range projects {
			assert.Equal(t, models.StatusCompleted, p.Status)
		}
	})

	t.Run("case-insensitive search", func(t *testing.T) {
		projects, total, err := repo.List(ctx, ProjectFilter{MemberID: alice.ID, Search: "WEBSITE", Pagination: utils.NewPaginationParams(1, 20)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, projects, 1)
		assert.Equal(t, "WEB-1", projects[0].ProjectCode)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		_, total, err := repo.List(ctx, ProjectFilter{MemberID: alice.ID, Search: "100%", Pagination: utils.NewPaginationParams(1, 20)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)

		_, total, err = repo.List(ctx, ProjectFilter{MemberID: alice.ID, Search: "_", Pagination: utils.NewPaginationParams(1, 20)})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("inclusive date bounds", func(t *testing.T) {
		projects, total, err := repo.List(ctx, ProjectFilter{
			MemberID:   alice.ID,
			StartDate:  utils.DateRange{From: &feb, To: &mar, ToInclusive: true},
			Pagination: utils.NewPaginationParams(1, 20),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, projects, 2)
	})

	t.Run("exclusive upper bound", func(t *testing.T) {
		_, total, err := repo.List(ctx, ProjectFilter{
			MemberID:   alice.ID,
			StartDate:  utils.DateRange{From: &feb, To: &mar},
			Pagination: utils.NewPaginationParams(1, 20),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("pagination", func(t *testing.T) {
		projects, total, err := repo.List(ctx, ProjectFilter{MemberID: alice.ID, Pagination: utils.NewPaginationParams(2, 2)})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, projects, 1)
		assert.Equal(t, "WEB-1", projects[0].ProjectCode)
	})

	t.Run("counts by status", func(t *testing.T) {
		counts, err := repo.CountByStatus(ctx, alice.ID, utils.DateRange{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts[models.StatusCompleted])
		assert.Equal(t, int64(1), counts[models.StatusInProgress])
		assert.Zero(t, counts[models.StatusPending])

		counts, err = repo.CountByStatus(ctx, alice.ID, utils.DateRange{From: &feb})
		require.NoError(t, err)
		assert.Equal(t, int64(1), counts[models.StatusCompleted])
	})

	t.Run("list by member", func(t *testing.T) {
		projects, err := repo.ListByMember(ctx, bob.ID)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "BOB-1", projects[0].ProjectCode)
	})
}

func TestProjectRepository_DeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	projects := NewProjectRepository(db)
	tasks := NewTaskRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "Owner", "owner@example.com")
	doomed := createProject(t, projects, owner, "P-1", "Doomed", time.Now(), models.StatusPending)
	kept := createProject(t, projects, owner, "P-2", "Kept", time.Now(), models.StatusPending)

	for _, p := range []*models.Project{doomed, doomed, kept} {
		task := &models.Task{ProjectID: p.ID, Title: "work", Status: models.StatusPending, CreatedByID: owner.ID}
		require.NoError(t, tasks.CreateWithActivity(ctx, task, &models.TaskActivity{UserID: owner.ID, Action: models.ActivityCreated}))
	}

	require.NoError(t, projects.Delete(ctx, doomed.ID))

	_, err := projects.FindByID(ctx, doomed.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Task{}).Where("project_id = ?", doomed.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.ProjectMember{}).Where("project_id = ?", doomed.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.TaskActivity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "only the surviving project's activity remains")

	remaining, err := tasks.ListByProject(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

func TestProjectRepository_DeleteRollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "task_activities"`)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "tasks"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err = NewProjectRepository(db).Delete(context.Background(), 7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}
