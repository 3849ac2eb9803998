package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/hirelane/internal/api/handler"
	"github.com/timmy/hirelane/internal/api/middleware"
	"github.com/timmy/hirelane/internal/config"
	"github.com/timmy/hirelane/internal/logger"
	"github.com/timmy/hirelane/internal/service"
)

// Services groups everything the HTTP layer depends on.
type Services struct {
	Pipeline   *service.PipelineService
	Candidates *service.CandidateService
	Jobs       *service.JobService
	Clients    *service.ClientService
	Notes      *service.NoteService
	Tasks      *service.TaskService
	Dashboard  *service.DashboardService
	Sync       *service.SyncService

	// SyncSource is the remote application store, nil when not configured.
	SyncSource   service.ApplicationSource
	HealthChecks map[string]handler.Pinger
}

// SetupRouter configures the Gin router with all routes.
func SetupRouter(svc *Services, cfg *config.ServerConfig, log *logger.Logger) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(middleware.CORS(cfg.CORS))

	healthHandler := handler.NewHealthHandler(svc.HealthChecks)
	applicationHandler := handler.NewApplicationHandler(svc.Pipeline)
	candidateHandler := handler.NewCandidateHandler(svc.Candidates, svc.Pipeline)
	jobHandler := handler.NewJobHandler(svc.Jobs)
	clientHandler := handler.NewClientHandler(svc.Clients)
	noteHandler := handler.NewNoteHandler(svc.Notes)
	taskHandler := handler.NewTaskHandler(svc.Tasks)
	dashboardHandler := handler.NewDashboardHandler(svc.Dashboard)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/dashboard", dashboardHandler.Get)

		apps := v1.Group("/applications")
		apps.GET("", applicationHandler.List)
		apps.POST("", applicationHandler.Apply)
		apps.GET("/upcoming", applicationHandler.Upcoming)
		apps.GET("/:id", applicationHandler.Get)
		apps.PUT("/:id/status", applicationHandler.Transition)
		apps.POST("/:id/interview", applicationHandler.ScheduleInterview)
		apps.PUT("/:id/interview", applicationHandler.UpdateInterview)
		apps.PUT("/:id/notes", applicationHandler.UpdateNotes)

		candidates := v1.Group("/candidates")
		candidates.GET("", candidateHandler.List)
		candidates.POST("", candidateHandler.Create)
		candidates.GET("/status-counts", candidateHandler.StatusCounts)
		candidates.GET("/:id", candidateHandler.Get)
		candidates.PUT("/:id", candidateHandler.Update)
		candidates.DELETE("/:id", candidateHandler.Delete)
		candidates.GET("/:id/applications", candidateHandler.Applications)
		candidates.POST("/:id/resume", candidateHandler.UploadResume)
		candidates.GET("/:id/resume", candidateHandler.ResumeURL)

		jobs := v1.Group("/jobs")
		jobs.GET("", jobHandler.List)
		jobs.POST("", jobHandler.Create)
		jobs.GET("/:id", jobHandler.Get)
		jobs.PUT("/:id", jobHandler.Update)
		jobs.DELETE("/:id", jobHandler.Delete)

		clients := v1.Group("/clients")
		clients.GET("", clientHandler.List)
		clients.POST("", clientHandler.Create)
		clients.GET("/:id", clientHandler.Get)
		clients.PUT("/:id", clientHandler.Update)
		clients.DELETE("/:id", clientHandler.Delete)

		notes := v1.Group("/notes")
		notes.GET("", noteHandler.List)
		notes.POST("", noteHandler.Create)
		notes.GET("/:id", noteHandler.Get)
		notes.PUT("/:id", noteHandler.Update)
		notes.DELETE("/:id", noteHandler.Delete)

		tasks := v1.Group("/tasks")
		tasks.GET("", taskHandler.List)
		tasks.POST("", taskHandler.Create)
		tasks.GET("/categories", taskHandler.Categories)
		tasks.POST("/bulk-update", taskHandler.BulkUpdate)
		tasks.POST("/bulk-delete", taskHandler.BulkDelete)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PATCH("/:id", taskHandler.Update)
		tasks.PUT("/:id/complete", taskHandler.Complete)
		tasks.DELETE("/:id", taskHandler.Delete)

		if svc.Sync != nil {
			adminHandler := handler.NewAdminHandler(svc.Sync, svc.SyncSource)
			admin := v1.Group("/admin")
			admin.POST("/sync", adminHandler.TriggerSync)
			admin.GET("/sync/status", adminHandler.GetSyncStatus)
		}
	}

	return r
}
