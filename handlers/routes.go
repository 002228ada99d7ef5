package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Rajangupta9/tasktracker/middleware"
	"github.com/Rajangupta9/tasktracker/store"
	"github.com/Rajangupta9/tasktracker/utils"
)

type RouterConfig struct {
	Store       store.TaskStore
	Logger      *log.Logger
	AuthEnabled bool
	JWTSecret   []byte
}

// NewRouter wires every route of the REST API.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			cfg.Logger.Error("panic", "err", recovered, "path", c.Request.URL.Path)
			utils.ResponseWithError(c, http.StatusInternalServerError, "internal server error")
		}),
		middleware.RequestLogger(cfg.Logger),
		middleware.CORS(),
	)
	router.NoRoute(func(c *gin.Context) {
		utils.ResponseWithError(c, http.StatusNotFound, "route not found")
	})
	router.NoMethod(func(c *gin.Context) {
		utils.ResponseWithError(c, http.StatusMethodNotAllowed, "Method not allowed")
	})

	router.GET("/check", Check(cfg.Store))

	tasks := NewTaskHandler(cfg.Store, cfg.Logger, cfg.AuthEnabled)
	auth := NewAuthHandler(cfg.JWTSecret, cfg.AuthEnabled)

	api := router.Group("/api")
	api.POST("/login", auth.Login)

	// gin wants one wildcard name per segment, so the task id is :id everywhere
	taskRoutes := api.Group("/tasks")
	if cfg.AuthEnabled {
		taskRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	}
	{
		taskRoutes.GET("", tasks.GetTasks)
		taskRoutes.POST("", tasks.CreateTask)
		taskRoutes.PUT("/:id", tasks.UpdateTask)
		taskRoutes.DELETE("/:id", tasks.DeleteTask)

		taskRoutes.POST("/:id/comments", tasks.AddComment)
		taskRoutes.PUT("/:id/comments/:commentId", tasks.UpdateComment)
		taskRoutes.DELETE("/:id/comments/:commentId", tasks.DeleteComment)
	}

	return router
}
