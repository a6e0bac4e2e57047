package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"threadtalk/backend/internal/api/handler"
	"threadtalk/backend/internal/chathub"
	"threadtalk/backend/internal/config"
	"threadtalk/backend/internal/models"
	"threadtalk/backend/internal/storage"
	"threadtalk/backend/internal/token"
)

func setupDependencies(cfg config.Config) (*gorm.DB, *redis.Client) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Thread{},
		&models.ThreadParticipation{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting ThreadTalk Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg := config.Load()

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	tokens := token.NewService([]byte(cfg.JWTSecret), cfg.TokenTTL)

	hub := chathub.NewHub(s)
	go hub.Run()

	r := gin.Default()
	h := handler.NewHandler(hub, s, tokens, cfg.TokenTTL)

	r.POST("/api/login", h.Login)
	r.POST("/api/logout", h.Logout)
	r.GET("/api/session", h.Session)

	authed := r.Group("/api", h.AuthRequired())
	authed.POST("/threads", h.CreateThread)
	authed.GET("/threads", h.ListThreads)
	authed.GET("/threads/:id/messages", h.ListMessages)
	authed.POST("/threads/:id/messages", h.SubmitMessage)
	authed.GET("/presence", h.Presence)

	r.GET("/ws", h.ServeWebSocket)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
