package server

import (
	"net/http"
	"time"

	ginhandler "mongo-user-service/internal/adapter/gin/handler"
	"mongo-user-service/internal/adapter/gin/middleware"
	ginrouter "mongo-user-service/internal/adapter/gin/router"

	"go.uber.org/zap"
)

// SetupHTTPServer creates the HTTP server around the Gin router.
func SetupHTTPServer(
	handler *ginhandler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	addr string,
	l *zap.Logger,
) *http.Server {
	router := ginrouter.SetupRouter(handler, rateLimiter, l)

	l.Info("REST API configured", zap.String("address", addr))

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
