package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mikeboe/thesis-herald/pkg/app"
	"github.com/mikeboe/thesis-herald/pkg/config"
	"github.com/mikeboe/thesis-herald/pkg/server"
)

var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("THESIS_HERALD_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog, err := app.SetupLogging(cfg.Log, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLog()

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize components: %v", err)
	}
	defer a.Close()

	// Initialize Service & Handler
	svc := server.NewService(a.Arxiv, a.Web, a.Assistant(), a.History)
	mcpServer := server.NewMCPServer(svc, version)
	handler := server.NewHandler(svc, server.NewMCPHandler(mcpServer))

	// Web Server Setup
	r := gin.Default()

	// CORS Setup
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id"},
		ExposeHeaders:    []string{"Content-Length", "Mcp-Session-Id"},
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(r)

	fmt.Printf("Server starting on port %s\n", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
