package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"geminibot/api/routes"
	"geminibot/internal/chatbot"
	"geminibot/internal/config"
	"geminibot/internal/conversation"
	"geminibot/internal/events"
	"geminibot/internal/llm"
	"geminibot/internal/metrics"
	"geminibot/pkg/logger"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// serve wires every module and runs until SIGINT or SIGTERM.
func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logger.New(cfg.Log.Level)
	defer logger.Sync()

	// Get the underlying zap logger for services
	zapLogger := logger.SugaredLogger.Desugar()

	eventBus := events.NewEventBus(zapLogger)
	defer func() {
		if err := eventBus.Close(); err != nil {
			logger.Errorw("Failed to close event bus", "error", err)
		}
	}()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		if err := collector.Subscribe(eventBus); err != nil {
			return err
		}
		metricsHandler = collector.Handler()
	}

	llmProvider, err := llm.NewGeminiProvider(ctx, cfg.LLM, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize model client: %w", err)
	}
	conversations := conversation.NewConversationService(llmProvider, eventBus, zapLogger, cfg.LLM.DefaultModel, nil)

	telegram, err := chatbot.NewTelegramProvider(ctx, cfg.Chatbot, zapLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram provider: %w", err)
	}
	chatbotService, err := chatbot.NewChatbotService(eventBus, zapLogger, telegram, conversations, cfg.Chatbot)
	if err != nil {
		return fmt.Errorf("failed to initialize chatbot service: %w", err)
	}

	logger.Infow("Services initialized",
		"bot", chatbotService.BotUsername(),
		"mode", cfg.Chatbot.Mode,
		"default_model", conversations.DefaultModel(),
		"metrics", cfg.Metrics.Enabled)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	var webhookSecret string
	if cfg.Chatbot.Mode == config.ModeWebhook {
		webhookSecret = cfg.Chatbot.WebhookSecret
	}
	routes.SetupRoutes(router, logger, chatbotService, conversations, webhookSecret, metricsHandler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infow("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	switch cfg.Chatbot.Mode {
	case config.ModeWebhook:
		if err := telegram.SetWebhook(cfg.Chatbot.WebhookEndpoint()); err != nil {
			stop()
			_ = group.Wait()
			return fmt.Errorf("failed to register webhook: %w", err)
		}
	default:
		// Telegram refuses getUpdates while a webhook is registered.
		if err := telegram.DeleteWebhook(); err != nil {
			logger.Warnw("Failed to delete webhook", "error", err)
		}
		poller := chatbot.NewPoller(telegram, chatbotService, cfg.Chatbot, zapLogger)
		group.Go(func() error {
			return poller.Run(groupCtx)
		})
	}

	err = group.Wait()
	logger.Info("Server exited")
	return err
}
