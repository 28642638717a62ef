package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/projecthub/projecthub-api/internal/constants"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type fakeGenerator struct {
	tasks   []GeneratedTask
	err     error
	project *models.Project
}

func (f *fakeGenerator) GenerateTasks(_ context.Context, project *models.Project, _ string) ([]GeneratedTask, error) {
	f.project = project
	return f.tasks, f.err
}

type TaskServiceTestSuite struct {
	suite.Suite
	ctx       context.Context
	db        *gorm.DB
	service   *TaskService
	generator *fakeGenerator
	owner     *models.User
	member    *models.User
	outsider  *models.User
	project   *models.Project
}

func (suite *TaskServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.db = testutil.NewDB(suite.T())

	projectRepo := repository.NewProjectRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	projects := NewProjectService(projectRepo, repository.NewUserRepository(suite.db), taskRepo)
	suite.generator = &fakeGenerator{}
	suite.service = NewTaskService(taskRepo, projectRepo, suite.generator)

	suite.owner = testutil.CreateUser(suite.T(), suite.db, "Owner", "owner@example.com")
	suite.member = testutil.CreateUser(suite.T(), suite.db, "Member", "member@example.com")
	suite.outsider = testutil.CreateUser(suite.T(), suite.db, "Outsider", "outsider@example.com")

	project, err := projects.CreateProject(suite.ctx, CreateProjectInput{ActorID: suite.owner.ID, ProjectCode: "P-1", Name: "Alpha"})
	suite.Require().NoError(err)
	_, err = projects.AddMember(suite.ctx, AddMemberInput{ProjectID: project.ID, ActorID: suite.owner.ID, UserID: suite.member.ID})
	suite.Require().NoError(err)
	suite.project = project
}

func (suite *TaskServiceTestSuite) createTask(title string) *models.Task {
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{ProjectID: suite.project.ID, ActorID: suite.member.ID, Title: title})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) TestCreateTask() {
	due := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	task, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID:  suite.project.ID,
		ActorID:    suite.owner.ID,
		Title:      "Design",
		AssigneeID: &suite.member.ID,
		DueDate:    &due,
		Status:     "inprogress",
	})
	suite.Require().NoError(err)
	suite.Equal(models.StatusInProgress, task.Status)
	suite.Equal(suite.owner.ID, task.CreatedByID)
	suite.Equal("Owner", task.CreatedBy.Name)
	suite.Require().NotNil(task.Assignee)
	suite.Equal("Member", task.Assignee.Name)

	activities, err := suite.service.ListActivities(suite.ctx, task.ID, suite.member.ID)
	suite.Require().NoError(err)
	suite.Require().Len(activities, 1)
	suite.Equal(models.ActivityCreated, activities[0].Action)
	suite.Equal(suite.owner.ID, activities[0].UserID)
	suite.Contains(activities[0].Description, "Design")
}

func (suite *TaskServiceTestSuite) TestCreateTaskDefaultsToPending() {
	task := suite.createTask("Plain")
	suite.Equal(models.StatusPending, task.Status)
	suite.Nil(task.AssigneeID)
}

func (suite *TaskServiceTestSuite) TestCreateTaskRejections() {
	_, err := suite.service.CreateTask(suite.ctx, CreateTaskInput{
		ProjectID: suite.project.ID, ActorID: suite.owner.ID, Title: "X", AssigneeID: &suite.outsider.ID,
	})
	suite.ErrorIs(err, ErrAssigneeNotMember)

	_, err = suite.service.CreateTask(suite.ctx, CreateTaskInput{ProjectID: suite.project.ID, ActorID: suite.outsider.ID, Title: "X"})
	suite.ErrorIs(err, ErrNotProjectMember)

	_, err = suite.service.CreateTask(suite.ctx, CreateTaskInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Title: "  "})
	suite.ErrorIs(err, ErrTitleRequired)

	_, err = suite.service.CreateTask(suite.ctx, CreateTaskInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Title: "X", Status: "blocked"})
	suite.ErrorIs(err, ErrInvalidStatus)

	_, err = suite.service.CreateTask(suite.ctx, CreateTaskInput{ProjectID: 9999, ActorID: suite.owner.ID, Title: "X"})
	suite.ErrorIs(err, ErrProjectNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskServiceTestSuite) TestListTasks() {
	suite.createTask("First")
	suite.createTask("Second")

	tasks, err := suite.service.ListTasks(suite.ctx, suite.project.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 2)
	suite.Equal("Second", tasks[0].Title)
	suite.Equal("Member", tasks[0].CreatedBy.Name)

	_, err = suite.service.ListTasks(suite.ctx, suite.project.ID, suite.outsider.ID)
	suite.ErrorIs(err, ErrNotProjectMember)

	_, err = suite.service.ListTasks(suite.ctx, 9999, suite.owner.ID)
	suite.ErrorIs(err, ErrProjectNotFound)
}

func (suite *TaskServiceTestSuite) TestUpdateTask() {
	task := suite.createTask("Draft")

	title := "Final"
	status := "Completed"
	updated, err := suite.service.UpdateTask(suite.ctx, task.ID, suite.owner.ID, UpdateTaskInput{
		Title:      &title,
		Status:     &status,
		AssigneeID: &suite.owner.ID,
	})
	suite.Require().NoError(err)
	suite.Equal("Final", updated.Title)
	suite.Equal(models.StatusCompleted, updated.Status)
	suite.Require().NotNil(updated.Assignee)
	suite.Equal(suite.owner.ID, updated.Assignee.ID)

	activities, err := suite.service.ListActivities(suite.ctx, task.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(activities, 2)
	suite.Equal(models.ActivityUpdated, activities[0].Action)
	suite.Equal("Updated title, status, assignee", activities[0].Description)
	suite.Equal("Owner", activities[0].User.Name)

	cleared, err := suite.service.UpdateTask(suite.ctx, task.ID, suite.owner.ID, UpdateTaskInput{ClearAssignee: true})
	suite.Require().NoError(err)
	suite.Nil(cleared.AssigneeID)
}

func (suite *TaskServiceTestSuite) TestUpdateTaskRejections() {
	task := suite.createTask("Draft")

	title := "Hijack"
	_, err := suite.service.UpdateTask(suite.ctx, task.ID, suite.outsider.ID, UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrNotProjectMember)

	_, err = suite.service.UpdateTask(suite.ctx, task.ID, suite.owner.ID, UpdateTaskInput{AssigneeID: &suite.outsider.ID})
	suite.ErrorIs(err, ErrAssigneeNotMember)

	empty := ""
	_, err = suite.service.UpdateTask(suite.ctx, task.ID, suite.owner.ID, UpdateTaskInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleEmpty)

	_, err = suite.service.UpdateTask(suite.ctx, 9999, suite.owner.ID, UpdateTaskInput{Title: &title})
	suite.ErrorIs(err, ErrTaskNotFound)

	activities, err := suite.service.ListActivities(suite.ctx, task.ID, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Len(activities, 1, "rejected updates record nothing")
}

func (suite *TaskServiceTestSuite) TestDeleteTask() {
	task := suite.createTask("Doomed")

	suite.ErrorIs(suite.service.DeleteTask(suite.ctx, task.ID, suite.outsider.ID), ErrNotProjectMember)
	suite.Require().NoError(suite.service.DeleteTask(suite.ctx, task.ID, suite.member.ID))
	suite.ErrorIs(suite.service.DeleteTask(suite.ctx, task.ID, suite.member.ID), ErrTaskNotFound)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.TaskActivity{}).Where("task_id = ?", task.ID).Count(&count).Error)
	suite.Zero(count)
}

func (suite *TaskServiceTestSuite) TestListActivitiesMembersOnly() {
	task := suite.createTask("Private")

	_, err := suite.service.ListActivities(suite.ctx, task.ID, suite.outsider.ID)
	suite.ErrorIs(err, ErrNotProjectMember)

	_, err = suite.service.ListActivities(suite.ctx, 9999, suite.owner.ID)
	suite.ErrorIs(err, ErrTaskNotFound)
}

func (suite *TaskServiceTestSuite) TestGenerateTasks() {
	past := time.Now().Add(-72 * time.Hour)
	future := time.Now().Add(72 * time.Hour)
	suite.generator.tasks = []GeneratedTask{
		{Title: "  Write brief  ", DueDate: &future},
		{Title: ""},
		{Title: "Backdated", DueDate: &past},
	}

	drafts, err := suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.member.ID, Text: "notes"})
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 2)
	suite.Equal("Write brief", drafts[0].Title)
	suite.NotNil(drafts[0].DueDate)
	suite.Nil(drafts[1].DueDate)
	suite.Equal("P-1", suite.generator.project.ProjectCode)

	var count int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Count(&count).Error)
	suite.Zero(count, "drafts are not persisted")
}

func (suite *TaskServiceTestSuite) TestGenerateTasksRejections() {
	_, err := suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.outsider.ID, Text: "notes"})
	suite.ErrorIs(err, ErrNotProjectMember)

	_, err = suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID})
	suite.ErrorIs(err, ErrTextRequired)

	_, err = suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAINoTasksGenerated)

	suite.generator.tasks = []GeneratedTask{{Title: " "}}
	_, err = suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAINoValidTasks)

	suite.generator.err = errors.New("rate limited")
	_, err = suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Text: "notes"})
	suite.ErrorContains(err, "rate limited")

	unconfigured := NewTaskService(suite.service.taskRepo, suite.service.projectRepo, nil)
	_, err = unconfigured.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Text: "notes"})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)
}

func (suite *TaskServiceTestSuite) TestGenerateTasksCapsDrafts() {
	for i := 0; i < constants.MaxAIGeneratedTasks+5; i++ {
		suite.generator.tasks = append(suite.generator.tasks, GeneratedTask{Title: fmt.Sprintf("Task %d", i)})
	}

	drafts, err := suite.service.GenerateTasks(suite.ctx, GenerateTasksInput{ProjectID: suite.project.ID, ActorID: suite.owner.ID, Text: "notes"})
	suite.Require().NoError(err)
	suite.Len(drafts, constants.MaxAIGeneratedTasks)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}

func TestParseGeneratedTasks(t *testing.T) {
	tasks, err := parseGeneratedTasks("```json\n[{\"title\":\"Ship\",\"description\":\"v1\",\"dueDate\":\"2026-10-28T23:59:59Z\"}]\n```")
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "Ship", tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.Equal(t, 2026, tasks[0].DueDate.Year())

	tasks, err = parseGeneratedTasks(`[{"title":"Later","dueDate":null}]`)
	require.NoError(t, err)
	assert.Nil(t, tasks[0].DueDate)

	_, err = parseGeneratedTasks("Sure! Here are your tasks")
	assert.Error(t, err)
}

func TestBuildTaskPrompt(t *testing.T) {
	project := &models.Project{ProjectCode: "WEB", Name: "Website", Description: "Marketing site"}
	prompt := buildTaskPrompt(project, "launch next week", time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC))

	assert.Contains(t, prompt, "Website (WEB)")
	assert.Contains(t, prompt, "Marketing site")
	assert.Contains(t, prompt, "launch next week")
	assert.Contains(t, prompt, "2026-03-01 09:00:00")
}
