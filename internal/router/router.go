package router

import (
	"time"

	"github.com/drivelane-dev/drivelane/internal/handlers"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps bundles everything the router mounts. All of it is constructed once
// in main and passed down; handlers never reach for globals.
type Deps struct {
	Auth           *handlers.AuthHandler
	Users          *handlers.UserHandler
	Applications   *handlers.ApplicationHandler
	RequireAuth    gin.HandlerFunc
	AllowedOrigins []string
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.POST("/register", deps.Auth.Register)
		api.POST("/token", deps.Auth.Token)

		users := api.Group("/users", deps.RequireAuth)
		{
			users.GET("/me", deps.Users.Me)
			users.PUT("/me", deps.Users.UpdateMe)
			users.DELETE("/me", deps.Users.DeleteMe)
		}

		applications := api.Group("/driver_license", deps.RequireAuth)
		{
			applications.POST("/", deps.Applications.Create)
			applications.GET("/my", deps.Applications.ListMine)
			applications.GET("/:id", deps.Applications.Get)
			applications.PUT("/:id", deps.Applications.Update)
			applications.DELETE("/:id", deps.Applications.Delete)
		}
	}

	return r
}
