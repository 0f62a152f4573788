package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aurevo/aurevo-server/internal/handlers"
	"github.com/aurevo/aurevo-server/internal/middleware"
)

type RouterConfig struct {
	AuthHandler         *handlers.AuthHandler
	AuthMiddleware      *middleware.AuthMiddleware
	ProfileHandler      *handlers.ProfileHandler
	MoodHandler         *handlers.MoodHandler
	WellnessHandler     *handlers.WellnessHandler
	TaskHandler         *handlers.TaskHandler
	GoalHandler         *handlers.GoalHandler
	SessionHandler      *handlers.SessionHandler
	HabitHandler        *handlers.HabitHandler
	NotificationHandler *handlers.NotificationHandler
	SocialHandler       *handlers.SocialHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5173",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/api")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Profile
	protected.GET("/profile", cfg.ProfileHandler.GetProfile)
	protected.PATCH("/profile/settings", cfg.ProfileHandler.UpdateSettings)
	protected.PUT("/profile/avatar", cfg.ProfileHandler.SetAvatar)
	protected.PUT("/profile/goals", cfg.ProfileHandler.SetWellnessGoals)

	// Mood & journal
	protected.POST("/moods", cfg.MoodHandler.LogMood)
	protected.GET("/moods", cfg.MoodHandler.ListMoods)
	protected.POST("/journal", cfg.MoodHandler.AddJournal)
	protected.GET("/journal", cfg.MoodHandler.ListJournal)

	// Wellness
	protected.PUT("/wellness/today", cfg.WellnessHandler.SetMetric)
	protected.GET("/wellness", cfg.WellnessHandler.ListDays)

	// Tasks
	protected.POST("/tasks", cfg.TaskHandler.Create)
	protected.GET("/tasks", cfg.TaskHandler.List)
	protected.PATCH("/tasks/:id", cfg.TaskHandler.Update)
	protected.POST("/tasks/:id/toggle", cfg.TaskHandler.ToggleComplete)
	protected.DELETE("/tasks/:id", cfg.TaskHandler.Delete)

	// Goals
	protected.POST("/goals", cfg.GoalHandler.Create)
	protected.GET("/goals", cfg.GoalHandler.List)
	protected.PUT("/goals/:id/progress", cfg.GoalHandler.UpdateProgress)
	protected.PUT("/goals/:id/status", cfg.GoalHandler.SetStatus)
	protected.PUT("/goals/:id/archive", cfg.GoalHandler.SetArchived)
	protected.POST("/goals/:id/dependencies", cfg.GoalHandler.AddDependency)
	protected.DELETE("/goals/:id/dependencies", cfg.GoalHandler.RemoveDependency)
	protected.DELETE("/goals/:id", cfg.GoalHandler.Delete)

	// Sessions & focus timer
	protected.POST("/sessions", cfg.SessionHandler.Record)
	protected.GET("/sessions", cfg.SessionHandler.List)
	protected.POST("/focus/start", cfg.SessionHandler.StartFocus)
	protected.POST("/focus/pause", cfg.SessionHandler.PauseFocus)
	protected.POST("/focus/resume", cfg.SessionHandler.ResumeFocus)
	protected.POST("/focus/stop", cfg.SessionHandler.StopFocus)
	protected.GET("/focus", cfg.SessionHandler.FocusState)

	// Habits
	protected.POST("/habits", cfg.HabitHandler.Create)
	protected.GET("/habits", cfg.HabitHandler.List)
	protected.POST("/habits/:id/log", cfg.HabitHandler.LogCompletion)
	protected.PUT("/habits/:id/active", cfg.HabitHandler.SetActive)
	protected.GET("/habits/:id/heatmap", cfg.HabitHandler.Heatmap)
	protected.DELETE("/habits/:id", cfg.HabitHandler.Delete)

	// Notifications
	protected.GET("/notifications", cfg.NotificationHandler.List)
	protected.POST("/notifications/:id/read", cfg.NotificationHandler.MarkRead)
	protected.POST("/notifications/read-all", cfg.NotificationHandler.MarkAllRead)
	protected.DELETE("/notifications/:id", cfg.NotificationHandler.Dismiss)
	protected.DELETE("/notifications", cfg.NotificationHandler.Clear)

	// Social feed
	protected.GET("/feed", cfg.SocialHandler.Feed)
	protected.POST("/posts", cfg.SocialHandler.CreatePost)
	protected.POST("/posts/:id/like", cfg.SocialHandler.ToggleLike)
	protected.PUT("/posts/:id/pin", cfg.SocialHandler.SetPinned)
	protected.DELETE("/posts/:id", cfg.SocialHandler.DeletePost)
	protected.GET("/posts/:id/comments", cfg.SocialHandler.Comments)
	protected.POST("/posts/:id/comments", cfg.SocialHandler.AddComment)
	protected.POST("/posts/:id/comments/:commentId/react", cfg.SocialHandler.ToggleReaction)

	return router
}
