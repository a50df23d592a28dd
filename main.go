package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/salmanshahriar/whos-fake/config"
	_ "github.com/salmanshahriar/whos-fake/docs"
	"github.com/salmanshahriar/whos-fake/middleware"
	"github.com/salmanshahriar/whos-fake/routes"
	"github.com/salmanshahriar/whos-fake/services/game"
	"github.com/salmanshahriar/whos-fake/services/redis"
	"github.com/salmanshahriar/whos-fake/services/socket_io"
	"github.com/salmanshahriar/whos-fake/services/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Who's Fake API
// @version 1.0
// @description Gin-Gonic server for the "Who's Fake" party game API
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
			// Continue execution even if migration fails
		} else {
			log.Println("Database migrated successfully")
		}
		if err := config.SeedWords(gormDB); err != nil {
			log.Printf("Warning: Word seeding failed: %v", err)
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.Connect_redis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	defer redis.CloseRedis(redisClient)

	roomStore := store.New(gormDB, redisClient)
	svc := game.NewService(roomStore)

	// The GET /cleanup endpoint covers deployments with an external
	// cron; everyone else gets an in-process reaper.
	if raw := os.Getenv("CLEANUP_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Invalid CLEANUP_INTERVAL %q: %v", raw, err)
		}
		go svc.RunReaper(context.Background(), interval)
		log.Printf("Reaper running every %s", interval)
	}

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, svc)

	sio := socket_io.NewSocketServer(redisClient)
	sio.Start(r)
	defer sio.Close()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
