package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"report-approval-api/config"
	"report-approval-api/controllers"
	"report-approval-api/routes"
	"report-approval-api/services"
	"report-approval-api/tasks"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	config.InitDB()

	if err := services.NewSystemService(config.DB).InitializeDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	// Job broker: Redis when configured, otherwise an in-process pool.
	rdb, err := config.OpenRedis()
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	var broker tasks.Broker
	if rdb != nil {
		broker = tasks.NewRedisBroker(rdb)
		log.Println("Job broker: redis")
	} else {
		broker = tasks.NewMemoryBroker(tasks.NewRegistry(config.DB, nil), 4)
		log.Println("Job broker: in-process (REDIS_ADDR not set)")
	}
	controllers.JobBroker = broker

	scheduler := tasks.NewScheduler(broker)
	if err := scheduler.Start(); err != nil {
		log.Fatal("Failed to start scheduler:", err)
	}
	defer scheduler.Stop()

	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Security headers
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	routes.SetupRoutes(router)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
