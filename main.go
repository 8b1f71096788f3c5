package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripwise/config"
	"tripwise/handlers"
	"tripwise/middleware"
	"tripwise/routes"
	"tripwise/services/amadeus"
	"tripwise/services/llm"
	"tripwise/services/orchestrator"
	"tripwise/services/results"
	"tripwise/services/session"
	"tripwise/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Shared session state.
	cacheTTL := time.Duration(config.AppConfig.ResponseCacheTTL) * time.Second
	store := session.NewStore(cacheTTL, config.AppConfig.LedgerCapacity)

	// External collaborators.
	travelClient := amadeus.NewClient(
		config.AppConfig.AmadeusAPIKey,
		config.AppConfig.AmadeusAPISecret,
		config.AppConfig.AmadeusBaseURL,
	)
	llmGateway := llm.NewGateway()

	// Services.
	chatService := orchestrator.NewChatService(
		llmGateway,
		travelClient,
		store,
		config.AppConfig.MaxConversationMessages,
		results.LimitsFromConfig(),
	)

	chatHandler := handlers.NewChatHandler(chatService)
	statusHandler := handlers.NewChatStatusHandler(store.Ledger)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ChatHandler:       chatHandler.Chat,
		ChatStreamHandler: chatHandler.ChatStream,
		ChatStatusHandler: statusHandler.Status,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("Server failed: %v", err)
		}
	}()

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("Server forced to shutdown: %v", err)
	}
	logger.Info("Server exited")
}
