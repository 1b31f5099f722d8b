package http

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/gravity-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(evaluator *usecase.Evaluator) *gin.Engine {

	router := gin.Default()

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(evaluator)

	// API v1 routes.
	v1 := router.Group("/v1")
	// Field evaluations.
	gravity := v1.Group("/gravity")
	gravity.GET("/acceleration", handler.GetAcceleration)
	gravity.GET("/potential", handler.GetPotential)
	gravity.GET("/jacobian", handler.GetJacobian)
	gravity.GET("/compare", handler.CompareMethods)

	// Available coefficient files.
	v1.GET("/models", handler.ListModels)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	return router
}
