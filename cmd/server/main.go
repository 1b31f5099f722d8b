// Package main provides the gravity API HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.ngs.io/gravity-api/internal/adapter/store"
	"go.ngs.io/gravity-api/internal/adapter/store/icgem"
	httpHandler "go.ngs.io/gravity-api/internal/http"
	"go.ngs.io/gravity-api/internal/usecase"
)

const version = "0.1.0"

func main() {
	// Parse command-line flags.
	showHelp := flag.Bool("help", false, "Show usage information")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showHelp {
		printUsage()
		return
	}

	if *showVersion {
		fmt.Printf("gravity-api version %s\n", version)
		return
	}

	// Load configuration from environment.
	port := getEnv("PORT", "8080")
	dataDir := getEnv("DATA_DIR", "./data")

	log.Printf("Starting gravity API server...")
	log.Printf("Port: %s", port)
	log.Printf("Data directory: %s", dataDir)

	// Initialize the coefficient store.
	icgemStore := icgem.NewStore(dataDir)

	// Cast to interface.
	var source store.CoefficientSource = icgemStore

	if models, err := source.List(); err != nil {
		log.Printf("Warning: could not scan data directory: %v", err)
	} else {
		log.Printf("Found %d coefficient file(s)", len(models))
		for _, m := range models {
			log.Printf("  - %s", m)
		}
	}

	// Initialize use case.
	evaluator := usecase.NewEvaluator(source)

	// Setup router.
	router := httpHandler.SetupRouter(evaluator)

	// Start server.
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Server listening on %s", addr)
	log.Printf("Health check: http://localhost:%s/health", port)
	log.Printf("API endpoints:")
	log.Printf("  - GET /v1/gravity/acceleration")
	log.Printf("  - GET /v1/gravity/potential")
	log.Printf("  - GET /v1/gravity/jacobian")
	log.Printf("  - GET /v1/gravity/compare")
	log.Printf("  - GET /v1/models")

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// printUsage prints usage information.
func printUsage() {
	fmt.Printf("Gravity API Server v%s\n\n", version)
	fmt.Println("USAGE:")
	fmt.Println("  gravity-api [flags]")
	fmt.Println()
	fmt.Println("FLAGS:")
	fmt.Println("  -help          Show this help message")
	fmt.Println("  -version       Show version information")
	fmt.Println()
	fmt.Println("ENVIRONMENT VARIABLES:")
	fmt.Println("  PORT                    Server port (default: 8080)")
	fmt.Println("  DATA_DIR                ICGEM .gfc data directory (default: ./data)")
	fmt.Println("  CORS_ALLOWED_ORIGINS    Comma-separated list of allowed origins (default: all origins)")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  # Start server with default settings")
	fmt.Println("  gravity-api")
	fmt.Println()
	fmt.Println("  # Start server on custom port")
	fmt.Println("  PORT=3000 gravity-api")
	fmt.Println()
	fmt.Println("API ENDPOINTS:")
	fmt.Println("  GET /health                    Health check")
	fmt.Println("  GET /v1/models                 List available coefficient files")
	fmt.Println("  GET /v1/gravity/acceleration   Evaluate the field acceleration")
	fmt.Println("  GET /v1/gravity/potential      Evaluate the field potential")
	fmt.Println("  GET /v1/gravity/jacobian       Evaluate the acceleration Jacobian")
	fmt.Println("  GET /v1/gravity/compare        Cross-check the evaluation methods")
	fmt.Println()
}
