package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projecthub/projecthub-api/internal/middleware"
	"github.com/projecthub/projecthub-api/internal/models"
	"github.com/projecthub/projecthub-api/internal/ratelimit"
	"github.com/projecthub/projecthub-api/internal/repository"
	"github.com/projecthub/projecthub-api/internal/services"
)

// RouterDeps carries everything the HTTP surface needs.
type RouterDeps struct {
	Auth     *AuthHandler
	Projects *ProjectHandler
	Tasks    *TaskHandler
	Tokens   *services.TokenService
	Users    repository.UserRepository
	Limiter  *ratelimit.Limiter // nil disables rate limiting
	Logger   *slog.Logger
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "ProjectHub API is running",
		})
	})

	signedIn := middleware.RequireSignIn(deps.Tokens)
	limited := middleware.RateLimit(deps.Limiter, deps.Logger)

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", limited, deps.Auth.Register)
			auth.POST("/verifyOTP", limited, deps.Auth.VerifyOTP)
			auth.POST("/login", limited, deps.Auth.Login)
			auth.POST("/forgotPassword", limited, deps.Auth.ForgotPassword)
			auth.POST("/reset-password", limited, deps.Auth.ResetPassword)
			auth.POST("/logout", deps.Auth.Logout)
			auth.GET("/me", signedIn, deps.Auth.GetCurrentUser)
			auth.GET("/user", signedIn, middleware.CheckRole(deps.Tokens, deps.Users, deps.Logger, models.RoleUser), deps.Auth.UserDashboard)
			auth.GET("/customer", signedIn, middleware.IsCustomer(deps.Tokens, deps.Users, deps.Logger), deps.Auth.CustomerDashboard)
		}

		api.GET("/users", signedIn, deps.Auth.ListUsers)

		projects := api.Group("/projects")
		projects.Use(signedIn)
		{
			projects.POST("", deps.Projects.CreateProject)
			projects.GET("", deps.Projects.ListProjects)
			projects.GET("/all", deps.Projects.ListAllProjects)
			projects.GET("/:id", deps.Projects.GetProject)
			projects.PUT("/:id", deps.Projects.UpdateProject)
			projects.DELETE("/:id", deps.Projects.DeleteProject)
			projects.POST("/:id/members", deps.Projects.AddMember)
			projects.POST("/:id/tasks", deps.Tasks.CreateTask)
			projects.GET("/:id/tasks", deps.Tasks.ListTasks)
			projects.POST("/:id/tasks/generate", deps.Tasks.GenerateTasks)
		}

		tasks := api.Group("/tasks")
		tasks.Use(signedIn)
		{
			tasks.PUT("/:id", deps.Tasks.UpdateTask)
			tasks.DELETE("/:id", deps.Tasks.DeleteTask)
			tasks.GET("/:id/activities", deps.Tasks.ListActivities)
		}
	}

	return r
}
