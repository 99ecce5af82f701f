package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"chat-server/internal/auth"
	"chat-server/internal/config"
	"chat-server/internal/dispatch"
	"chat-server/internal/handlers"
	"chat-server/internal/middleware"
	"chat-server/internal/observability"
	"chat-server/internal/rabbitmq"
	"chat-server/internal/store"
	"chat-server/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := store.Create(context.Background(), cfg.StoreConfig())
	if err != nil {
		log.Fatalf("failed to create store handle: %v", err)
	}
	defer db.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("audit publisher mode=%s", rabbitmq.PublisherMode(publisher))

	audit := telemetry.NewAuditEmitter(publisher, "audit.chat-server", "chat-server", cfg.Environment)

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	dispatcher := dispatch.New(db, db)

	sessionHandler := handlers.NewSessionHandler(dispatcher, tokens, audit)
	messageHandler := handlers.NewMessageHandler(dispatcher)
	userHandler := handlers.NewUserHandler(dispatcher, audit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.POST("/session", sessionHandler.Handle)
	router.POST("/messages", authMiddleware, messageHandler.Post)
	router.GET("/messages", authMiddleware, messageHandler.History)
	router.GET("/users", authMiddleware, userHandler.List)
	router.DELETE("/users/me", authMiddleware, userHandler.DeleteMe)

	handlers.RegisterOpsRoutes(router, audit, cfg.Debug)

	if err := router.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
