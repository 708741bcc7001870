package router

import (
	"net/http"

	"mongo-user-service/internal/adapter/gin/handler"
	"mongo-user-service/internal/adapter/gin/middleware"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	if rateLimiter != nil {
		router.Use(rateLimiter.Handler())
	}

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the users API. See /swagger/ for interactive documentation.",
		})
	})

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "mongo-user-service",
		})
	})

	// Swagger UI backed by the hand-maintained OpenAPI document
	swaggerUI := httpSwagger.Handler(httpSwagger.URL("/swagger/users.swagger.json"))
	router.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/users.swagger.json" {
			c.File("./api/swagger/users.swagger.json")
			return
		}
		swaggerUI.ServeHTTP(c.Writer, c.Request)
	})

	users := router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
