package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"convoyage-platform/internal/api"
	"convoyage-platform/internal/config"
	"convoyage-platform/internal/db"
	"convoyage-platform/internal/modules/mission"
	"convoyage-platform/internal/modules/pricing"
	"convoyage-platform/internal/modules/quote"
	"convoyage-platform/internal/modules/user"
	"convoyage-platform/internal/storage"
	"convoyage-platform/pkg/email"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func main() {
	// 1. --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	e := echo.New()

	// 2. --- Middleware ---
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"http://localhost:5173", cfg.ClientOrigin},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// 3. --- Database ---
	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	dbPool, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to the database: %v", err)
	}
	defer dbPool.Close()
	e.Logger.Info("Successfully connected to the database!")

	// 4. --- External Services ---
	documentStore, err := storage.NewClient(context.Background(),
		cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
	if err != nil {
		log.Fatalf("Failed to connect to the object store: %v", err)
	}

	emailer, err := email.NewSESV2Sender(context.Background(), cfg.AWSRegion, cfg.EmailFrom)
	if err != nil {
		log.Fatalf("Failed to initialize the email sender: %v", err)
	}

	templateManager, err := email.NewTemplateManager()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}

	// 5. --- Dependency Injection (Wiring everything up) ---
	// --- User Module ---
	userRepo := user.NewRepository(dbPool)
	userService := user.NewService(userRepo, emailer, templateManager, cfg.JWTSecret, cfg.ClientOrigin, cfg.GoogleOAuthConfig())
	userHandler := user.NewHandler(userService)

	// --- Pricing Module ---
	pricingRepo := pricing.NewRepository(dbPool)
	pricingService := pricing.NewService(pricingRepo)
	pricingHandler := pricing.NewHandler(pricingService)

	// --- Quote Module ---
	quoteRepo := quote.NewRepository(dbPool)
	quoteService := quote.NewService(quoteRepo, pricingService, userRepo, emailer, templateManager, cfg.ClientOrigin)
	quoteHandler := quote.NewHandler(quoteService)

	// --- Mission Module ---
	missionRepo := mission.NewRepository(dbPool)
	missionService := mission.NewService(missionRepo, userRepo, documentStore, emailer, templateManager, cfg.ClientOrigin)
	missionHandler := mission.NewHandler(missionService)

	// 6. --- Routes ---
	api.SetupRoutes(e, cfg.JWTSecret,
		userHandler,
		pricingHandler,
		quoteHandler,
		missionHandler,
	)

	// 7. --- Start Server with graceful shutdown ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server, an error occurred:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}
