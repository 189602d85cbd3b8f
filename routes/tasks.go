package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/learntrack/learntrack-backend/config"
	"github.com/learntrack/learntrack-backend/controllers"
	"github.com/learntrack/learntrack-backend/middleware"
	"github.com/learntrack/learntrack-backend/models"
)

// SetupTasksRouter wires the task tracker service: tasks with subtasks,
// tags, file attachments, reminders, the calendar view and admin user
// management.
func SetupTasksRouter(r *gin.Engine, db *gorm.DB, cfg config.Config) *gin.Engine {
	auth := controllers.NewAuthController(db, cfg)
	users := controllers.NewUserController(db)
	tasks := controllers.NewTaskController(db)
	subtasks := controllers.NewSubTaskController(db)
	tags := controllers.NewTagController(db)
	files := controllers.NewFileController(db, cfg.UploadDir)
	reminders := controllers.NewReminderController(db)
	calendar := controllers.NewCalendarController(db)

	r.GET("/health", controllers.HealthCheck)
	r.POST("/register", auth.Register)
	r.POST("/login", auth.Login)

	authed := r.Group("", middleware.Authenticate(db, cfg.JWTSecret))
	{
		authed.GET("/profile", auth.Profile)

		authed.POST("/tasks", tasks.Create)
		authed.GET("/tasks", tasks.List)
		authed.GET("/tasks/:id", tasks.Get)
		authed.PUT("/tasks/:id", tasks.Update)
		authed.DELETE("/tasks/:id", tasks.Delete)
		authed.POST("/tasks/:id/generate-next", tasks.GenerateNext)

		authed.POST("/tasks/:id/reminders", reminders.Create)
		authed.GET("/tasks/:id/reminders", reminders.List)
		authed.PUT("/tasks/:id/reminders/:reminderID", reminders.Update)
		authed.DELETE("/tasks/:id/reminders/:reminderID", reminders.Delete)

		authed.POST("/subtasks", subtasks.Create)
		authed.GET("/subtasks", subtasks.List)
		authed.PUT("/subtasks/:id", subtasks.Update)
		authed.DELETE("/subtasks/:id", subtasks.Delete)

		authed.POST("/tags", tags.Create)
		authed.GET("/tags", tags.List)
		authed.PUT("/tags/:id", tags.Update)
		authed.DELETE("/tags/:id", tags.Delete)

		authed.POST("/files", files.Upload)
		authed.GET("/files", files.List)
		authed.GET("/files/:id/download", files.Download)
		authed.DELETE("/files/:id", files.Delete)

		authed.GET("/calendar", calendar.Window)

		admin := authed.Group("/users", middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("", users.List)
			admin.GET("/:id", users.Get)
			admin.PUT("/:id", users.Update)
			admin.DELETE("/:id", users.Delete)
		}
	}

	return r
}
