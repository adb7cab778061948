package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"report-approval-api/config"
	"report-approval-api/tasks"
)

// Worker process: pulls jobs from the Redis queue and executes them. Scale
// horizontally by running more instances.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	config.InitDB()

	rdb, err := config.OpenRedis()
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	if rdb == nil {
		log.Fatal("REDIS_ADDR must be set for the worker process")
	}

	concurrency, _ := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY"))
	if concurrency <= 0 {
		concurrency = 4
	}

	registry := tasks.NewRegistry(config.DB, rdb)
	worker := tasks.NewWorker(tasks.NewRedisBroker(rdb), registry, concurrency)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("Worker starting with concurrency %d", concurrency)
	worker.Run(ctx)
	log.Println("Worker stopped")
}
