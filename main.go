package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/elvis-ci/Riviera/app"
	"github.com/elvis-ci/Riviera/routes"
)

func main() {
	log.Println("✅ Starting Riviera...")

	// Load environment variables
	_ = godotenv.Load()

	// Build the process-scoped state layer
	application, err := app.New(app.ConfigFromEnv())
	if err != nil {
		log.Fatalf("❌ Failed to build app: %v", err)
	}
	defer application.Teardown()

	// Startup sequence: restore session, register the auth listener,
	// hydrate the catalog under its TTL policy
	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	application.Init(initCtx)
	cancel()

	// Gin setup
	r := gin.Default()

	// CORS settings
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-KEY"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupRoutes(r, application)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("🚀 Server running on port %s...", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
