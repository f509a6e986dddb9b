package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"messenger-service/internal/config"
	"messenger-service/internal/contacts"
	"messenger-service/internal/db"
	"messenger-service/internal/handlers"
	"messenger-service/internal/middleware"
	"messenger-service/internal/observability"
	"messenger-service/internal/presence"
	"messenger-service/internal/repositories"
	"messenger-service/internal/sweeper"
	"messenger-service/internal/telemetry"
	"messenger-service/internal/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to db")
	}

	shutdownTracing, err := telemetry.Init(context.Background(), cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize tracing")
	}
	defer shutdownTracing(context.Background())

	if cfg.AMQPURL != "" {
		publisher, err := observability.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logrus.WithError(err).Warn("amqp disabled, events will not be published")
		} else {
			observability.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	accountRepo := repositories.NewAccountRepo(database)
	contactRepo := repositories.NewContactRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	presenceRegistry := presence.NewRegistry(accountRepo)
	contactService := contacts.NewService(contactRepo)

	hub := ws.NewHub(presenceRegistry)
	chatWS := ws.NewChatWebSocketHandler(hub, accountRepo, contactService, messageRepo, cfg.LiveMessageTTL, cfg.WSFrameRate, cfg.WSFrameBurst)

	expirySweeper := sweeper.New(messageRepo, cfg.SweepInterval)
	expirySweeper.Start()
	defer expirySweeper.Stop()

	contactHandler := handlers.NewContactHandler(accountRepo, contactService)
	messageHandler := handlers.NewMessageHandler(contactService, messageRepo, cfg.DefaultMessageTTL)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("messenger-service"))
	router.Use(observability.HTTPMetricsMiddleware())
	router.Use(middleware.RequestID())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	identity := middleware.Identity()

	router.POST("/contacts", identity, contactHandler.AddContact)
	router.POST("/contacts/accept", identity, contactHandler.AcceptContact)
	router.POST("/contacts/reject", identity, contactHandler.RejectContact)
	router.GET("/contacts", identity, contactHandler.ListContacts)

	router.POST("/messages", identity, messageHandler.SendMessage)
	router.GET("/messages/:contact_id", identity, messageHandler.GetMessages)

	router.GET("/ws/chat/:user_id", chatWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server error")
	}
}
