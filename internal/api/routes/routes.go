package routes

import (
	"tours-backend/internal/api/handlers"
	"tours-backend/internal/api/middleware"
	"tours-backend/internal/config"
	"tours-backend/internal/models"
	"tours-backend/internal/repository"
	"tours-backend/internal/services"
	"tours-backend/pkg/cache"
	"tours-backend/pkg/email"
	"tours-backend/pkg/jwt"
	"tours-backend/pkg/ratelimit"
	"tours-backend/pkg/redis"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes wires repositories, services, and handlers onto the router.
// redisClient may be nil; caching is skipped and rate limiting falls back
// to in-process buckets.
func SetupRoutes(router *gin.Engine, db *mongo.Database, cfg *config.Config, redisClient *redis.Client) {
	userRepo := repository.NewUserRepository(db)
	tourRepo := repository.NewTourRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	jwtUtil := jwt.NewJWTUtil(cfg.JWTSecret, cfg.JWTExpiry)
	emailService := email.NewEmailService(
		cfg.SMTP.Host, cfg.SMTP.Port,
		cfg.SMTP.Username, cfg.SMTP.Password,
		cfg.SMTP.FromEmail, cfg.SMTP.FromName,
		cfg.AppURL,
	)

	authService := services.NewAuthService(userRepo, jwtUtil, emailService)
	userService := services.NewUserService(userRepo, cfg.PageSize)
	tourService := services.NewTourService(tourRepo, cfg.PageSize)
	reviewService := services.NewReviewService(reviewRepo, tourRepo, cfg.PageSize)

	var limiter ratelimit.RateLimiter
	if redisClient != nil && redisClient.IsConnected() {
		cacheManager := cache.NewRedisManager(redisClient, cache.DefaultConfig())
		tourService.SetCacheManager(cacheManager)
		reviewService.SetCacheManager(cacheManager)
		limiter = ratelimit.NewRedisRateLimiter(redisClient.GetClient(), ratelimit.DefaultConfig())
	} else {
		limiter = ratelimit.NewMemoryRateLimiter(ratelimit.DefaultConfig())
	}

	authHandler := handlers.NewAuthHandler(authService, cfg.JWTExpiry, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(userService)
	tourHandler := handlers.NewTourHandler(tourService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	api := router.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))

	api.GET("/health", healthHandler.HealthCheck)

	requireAuth := middleware.Auth(authService)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password/:token", authHandler.ResetPassword)
		auth.POST("/activate-account", authHandler.Activate)

		auth.POST("/change-password", requireAuth, authHandler.ChangePassword)
		auth.POST("/deactivate-account", requireAuth, authHandler.Deactivate)
		auth.GET("/profile", requireAuth, authHandler.Profile)
	}

	tours := api.Group("/tours")
	{
		tours.GET("", tourHandler.List)
		tours.GET("/top-five", tourHandler.TopFive)
		tours.GET("/stats", tourHandler.Stats)
		tours.GET("/monthly-plan/:year", requireAuth,
			middleware.RequireRole(models.RoleAdmin, models.RoleLeadGuide, models.RoleGuide),
			tourHandler.MonthlyPlan)
		tours.GET("/:id", tourHandler.Get)

		tourWrite := middleware.RequireRole(models.RoleAdmin, models.RoleLeadGuide)
		tours.POST("", requireAuth, tourWrite, tourHandler.Create)
		tours.PATCH("/:id", requireAuth, tourWrite, tourHandler.Update)
		tours.DELETE("/:id", requireAuth, tourWrite, tourHandler.Delete)

		// Nested reviews
		tours.GET("/:id/reviews", func(c *gin.Context) {
			c.Params = append(c.Params, gin.Param{Key: "tourId", Value: c.Param("id")})
			reviewHandler.List(c)
		})
		tours.POST("/:id/reviews", requireAuth, middleware.RequireRole(models.RoleUser), func(c *gin.Context) {
			c.Params = append(c.Params, gin.Param{Key: "tourId", Value: c.Param("id")})
			reviewHandler.Create(c)
		})
	}

	reviews := api.Group("/reviews")
	{
		reviews.GET("", requireAuth, reviewHandler.List)
		reviews.GET("/:id", requireAuth, reviewHandler.Get)
		reviews.POST("", requireAuth, middleware.RequireRole(models.RoleUser), reviewHandler.Create)
		reviews.PATCH("/:id", requireAuth, reviewHandler.Update)
		reviews.DELETE("/:id", requireAuth, reviewHandler.Delete)
	}

	users := api.Group("/users")
	users.Use(requireAuth, middleware.RequireRole(models.RoleAdmin))
	{
		users.GET("", userHandler.List)
		users.POST("", userHandler.Create)
		users.GET("/:id", userHandler.Get)
		users.PATCH("/:id", userHandler.Update)
		users.DELETE("/:id", userHandler.Delete)
	}
}
