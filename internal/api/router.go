package api

import (
	"net/http"

	"convoyage-platform/internal/api/middleware"
	"convoyage-platform/internal/modules/mission"
	"convoyage-platform/internal/modules/pricing"
	"convoyage-platform/internal/modules/quote"
	"convoyage-platform/internal/modules/user"

	"github.com/labstack/echo/v4"
)

// SetupRoutes sets up all the API endpoints for the application.
func SetupRoutes(
	e *echo.Echo,
	jwtSecret string,
	userHandler *user.Handler,
	pricingHandler *pricing.Handler,
	quoteHandler *quote.Handler,
	missionHandler *mission.Handler,
) {
	authMiddleware := middleware.JWTAuth(jwtSecret)
	adminRequired := middleware.AdminRequired()

	// --- Public Routes ---
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Welcome to the Convoyage Platform!"})
	})

	authGroup := e.Group("/auth")
	{
		authGroup.POST("/signup", userHandler.Signup)
		authGroup.POST("/login", userHandler.Login)
		authGroup.POST("/activate", userHandler.ActivateAccount)
		authGroup.POST("/resend-activation", userHandler.ResendActivation)
		authGroup.GET("/google/login", userHandler.GoogleLogin)
		authGroup.GET("/google/callback", userHandler.GoogleCallback)
	}

	// The distance bands, vehicle catalogue and price estimation are
	// public so the landing page can show prices before signup.
	pricingGroup := e.Group("/pricing")
	{
		pricingGroup.GET("/ranges", pricingHandler.ListRanges)
		pricingGroup.GET("/vehicle-types", pricingHandler.ListVehicleTypes)
		pricingGroup.POST("/estimate", pricingHandler.Estimate)
	}

	// --- Authenticated Routes ---
	profileGroup := e.Group("/profile", authMiddleware)
	{
		profileGroup.GET("", userHandler.GetProfile)
		profileGroup.PUT("", userHandler.UpdateProfile)
	}

	quoteGroup := e.Group("/quotes", authMiddleware)
	{
		quoteGroup.POST("", quoteHandler.CreateQuote)
		quoteGroup.GET("", quoteHandler.ListMyQuotes)
		quoteGroup.GET("/:quoteId", quoteHandler.GetQuote)
		quoteGroup.DELETE("/:quoteId", quoteHandler.DeleteQuote)
	}

	missionGroup := e.Group("/missions", authMiddleware)
	{
		missionGroup.GET("", missionHandler.ListMissions)
		missionGroup.GET("/:missionId", missionHandler.GetMission)
		missionGroup.PUT("/:missionId/status", missionHandler.UpdateStatus)
		missionGroup.POST("/:missionId/documents", missionHandler.UploadDocument)
		missionGroup.GET("/:missionId/documents", missionHandler.ListDocuments)
	}

	// --- Admin Routes ---
	adminGroup := e.Group("/admin", authMiddleware, adminRequired)
	{
		// Quote Management
		adminGroup.GET("/quotes", quoteHandler.ListAllQuotes)
		adminGroup.POST("/quotes/:quoteId/accept", quoteHandler.AcceptQuote)

		// Mission Management
		adminGroup.GET("/missions", missionHandler.ListMissions)
		adminGroup.POST("/missions/:missionId/assign", missionHandler.AssignDriver)
		adminGroup.PUT("/missions/:missionId/status", missionHandler.UpdateStatus)

		// Pricing Grid Management
		adminGroup.GET("/pricing/grids", pricingHandler.GetGrid)
		adminGroup.PUT("/pricing/grids/:vehicleTypeId/:rangeId", pricingHandler.SavePrice)
		adminGroup.POST("/pricing/grids/reload", pricingHandler.ReloadGrid)

		// User Management
		adminGroup.GET("/users", userHandler.ListUsers)
		adminGroup.POST("/users", userHandler.AdminCreateUser)
	}
}
