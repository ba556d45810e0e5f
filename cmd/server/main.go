package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/google/gops/agent"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/scout/internal/app"
	"github.com/arturoeanton/scout/internal/handler"
	"github.com/arturoeanton/scout/internal/mcp"
	"github.com/arturoeanton/scout/internal/middleware"
	"github.com/arturoeanton/scout/pkg/config"
)

const version = "1.0.0"

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("🚀 Starting Scout",
		"port", cfg.Port,
		"store", cfg.StoreDriver,
		"embedding_provider", cfg.EmbeddingProvider,
		"chat_provider", cfg.ChatProvider,
		"mcp_enabled", cfg.MCPEnabled,
	)

	if cfg.GopsEnabled {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			slog.Warn("gops agent failed", "error", err)
		}
	}

	// ── Store, providers and services ────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	svc, err := app.Build(ctx, cfg)
	cancel()
	if err != nil {
		slog.Error("failed to initialise services", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// ── Fiber App ────────────────────────────────────────────────────────
	fiberApp := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		BodyLimit:    30 << 20,
	})

	// Global middleware
	fiberApp.Use(recover.New())
	fiberApp.Use(fiberlogger.New())
	fiberApp.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
	}))

	// Audit middleware (logs all requests)
	fiberApp.Use(middleware.AuditMiddleware(svc.AuditLogs))

	// ── Public Routes ────────────────────────────────────────────────────
	api := fiberApp.Group("/api")

	api.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"app":     cfg.AppName,
			"version": version,
		})
	})

	jobTracker := handler.NewJobTracker()
	embeddingsHandler := handler.NewEmbeddingsHandler(svc.Knowledge, jobTracker, svc.AuditLogs)
	embeddingsHandler.RegisterPublic(api)

	chatHandler := handler.NewChatHandler(svc.Interview)
	chatHandler.Register(api)

	voiceHandler := handler.NewVoiceHandler(svc.Voice)
	voiceHandler.Register(api)

	ragHandler := handler.NewRAGHandler(svc.Retrieval)
	ragHandler.Register(api)

	// ── Admin Routes ─────────────────────────────────────────────────────
	// Registered after the public routes: the group middleware matches every /api path.
	admin := api
	if cfg.JWTSecret != "" {
		admin = api.Group("", middleware.JWTMiddleware(middleware.JWTConfig{
			Secret:    cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			ExpiresIn: time.Duration(cfg.JWTExpiration) * time.Hour,
		}))
	} else {
		slog.Warn("JWT_SECRET not set, admin routes are unauthenticated")
	}

	embeddingsHandler.RegisterAdmin(admin)

	jobsHandler := handler.NewJobsHandler(jobTracker)
	jobsHandler.Register(admin)

	auditHandler := handler.NewAuditHandler(svc.AuditLogs)
	auditHandler.Register(admin)

	// ── MCP Server (separate port) ───────────────────────────────────────
	if cfg.MCPEnabled {
		mcpServer := mcp.NewServer(svc.Knowledge, svc.Retrieval, svc.AuditLogs, cfg.MCPPort, version)
		go func() {
			if err := mcpServer.Start(); err != nil {
				slog.Error("MCP server failed", "error", err)
			}
		}()
	}

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("🌐 Fiber listening", "port", cfg.Port)
	if err := fiberApp.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
