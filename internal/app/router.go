package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hustle/internal/handler"
	"hustle/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	AuthHandler         *handler.AuthHandler
	FareHandler         *handler.FareHandler
	WalletHandler       *handler.WalletHandler
	CatalogHandler      *handler.CatalogHandler
	RunnerHandler       *handler.RunnerHandler
	InstantTaskHandler  *handler.InstantTaskHandler
	CustomTaskHandler   *handler.CustomTaskHandler
	NotificationHandler *handler.NotificationHandler
	Sessions            middleware.SessionResolver
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
	Logger              *zap.Logger
}

// NewRouter creates a new Gin router with all routes registered.
// Reads of the catalog, fares, runners and open errands are public; anything
// touching money or a user's own data needs a bearer token.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")

	// Idempotency runs after auth so stored responses are keyed per user.
	authed := []gin.HandlerFunc{
		middleware.RequireAuth(deps.Sessions),
		middleware.IdempotencyMiddleware(deps.RedisClient),
	}

	// Auth routes. Without Redis, logout only revokes the token on the
	// instance that served it.
	authRoutes := v1.Group("/auth")
	{
		authRoutes.POST("/signup", deps.AuthHandler.Signup)
		authRoutes.POST("/login", deps.AuthHandler.Login)
		authRoutes.POST("/logout", deps.AuthHandler.Logout)
		authRoutes.GET("/session", deps.AuthHandler.Session)
	}
	verify := authRoutes.Group("", authed...)
	{
		verify.POST("/otp/send", deps.AuthHandler.SendOTP)
		verify.POST("/otp/verify", deps.AuthHandler.VerifyOTP)
		verify.POST("/kyc", deps.AuthHandler.CompleteKYC)
	}

	// Fare routes.
	fare := v1.Group("/fare")
	{
		fare.POST("/estimate", deps.FareHandler.Estimate)
		fare.POST("/delivery", deps.FareHandler.Delivery)
	}

	// Catalog routes.
	catalog := v1.Group("/catalog")
	{
		catalog.GET("/items", deps.CatalogHandler.ListItems)
		catalog.GET("/items/:id", deps.CatalogHandler.GetItem)
		catalog.GET("/vendors", deps.CatalogHandler.ListVendors)
		catalog.GET("/vendors/:id", deps.CatalogHandler.GetVendor)
	}

	// Wallet routes.
	wallets := v1.Group("/wallets", authed...)
	{
		wallets.GET("/:userId", deps.WalletHandler.Get)
		wallets.POST("/:userId/init", deps.WalletHandler.Initialize)
		wallets.POST("/:userId/deposit", deps.WalletHandler.Deposit)
		wallets.GET("/:userId/transactions", deps.WalletHandler.Transactions)
	}

	// Runner routes.
	runners := v1.Group("/runners")
	{
		runners.GET("", deps.RunnerHandler.GetAll)
		runners.GET("/available", deps.RunnerHandler.Available)
		runners.GET("/nearby", deps.RunnerHandler.Nearby)
		runners.GET("/:id", deps.RunnerHandler.Get)
	}
	runnerWrites := runners.Group("", authed...)
	{
		runnerWrites.POST("", deps.RunnerHandler.Register)
		runnerWrites.POST("/:id/location", deps.RunnerHandler.UpdateLocation)
		runnerWrites.POST("/:id/availability", deps.RunnerHandler.UpdateAvailability)
	}

	// Instant task routes.
	instant := v1.Group("/instant-tasks")
	{
		instant.POST("/quote", deps.InstantTaskHandler.Quote)
	}
	instantAuthed := instant.Group("", authed...)
	{
		instantAuthed.POST("", deps.InstantTaskHandler.Create)
		instantAuthed.GET("/:id", deps.InstantTaskHandler.Get)
		instantAuthed.POST("/:id/start", deps.InstantTaskHandler.Start)
		instantAuthed.POST("/:id/deliver", deps.InstantTaskHandler.Deliver)
		instantAuthed.POST("/:id/complete", deps.InstantTaskHandler.Complete)
		instantAuthed.POST("/:id/cancel", deps.InstantTaskHandler.Cancel)
		instantAuthed.GET("/users/:userId", deps.InstantTaskHandler.ListByUser)
		instantAuthed.GET("/runners/:runnerId", deps.InstantTaskHandler.ListByRunner)
	}

	// Custom task routes.
	custom := v1.Group("/custom-tasks")
	{
		custom.GET("", deps.CustomTaskHandler.ListOpen)
		custom.GET("/:id", deps.CustomTaskHandler.Get)
	}
	customAuthed := custom.Group("", authed...)
	{
		customAuthed.POST("", deps.CustomTaskHandler.Create)
		customAuthed.POST("/:id/accept", deps.CustomTaskHandler.Accept)
		customAuthed.POST("/:id/start", deps.CustomTaskHandler.Start)
		customAuthed.POST("/:id/submit", deps.CustomTaskHandler.Submit)
		customAuthed.POST("/:id/confirm", deps.CustomTaskHandler.Confirm)
		customAuthed.POST("/:id/cancel", deps.CustomTaskHandler.Cancel)
		customAuthed.GET("/users/:userId", deps.CustomTaskHandler.ListByUser)
		customAuthed.GET("/runners/:runnerId", deps.CustomTaskHandler.ListByRunner)
	}

	// Notification routes.
	notifications := v1.Group("/notifications", authed...)
	{
		notifications.GET("/:userId", deps.NotificationHandler.List)
		notifications.DELETE("/:userId", deps.NotificationHandler.Clear)
		notifications.POST("/:userId/read-all", deps.NotificationHandler.MarkAllRead)
		notifications.POST("/:userId/:id/read", deps.NotificationHandler.MarkRead)
	}

	return router
}
