package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"food-delivery-backend/config"
	"food-delivery-backend/handlers"
	"food-delivery-backend/logging"
	"food-delivery-backend/middleware"
	"food-delivery-backend/notify"
	"food-delivery-backend/payment"
	"food-delivery-backend/realtime"
	"food-delivery-backend/routes"
	"food-delivery-backend/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger := logging.GetSugaredLogger(cfg.Server.Mode)
	defer logger.Sync()

	gin.SetMode(cfg.Server.Mode)

	db, err := config.OpenDB(cfg.Database.Path)
	if err != nil {
		logger.Fatalw("failed to open database", "path", cfg.Database.Path, "error", err)
	}
	logger.Infow("database connected and migrated", "path", cfg.Database.Path)

	publisher, err := realtime.NewPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		// real-time fan-out is best effort; dashboards fall back to polling
		logger.Warnw("redis unavailable, real-time fan-out disabled", "addr", cfg.Redis.Addr, "error", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	var notifier notify.Sender
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.From, cfg.SMTP.User, cfg.SMTP.Pass)
	} else {
		notifier = &notify.LogSender{Logger: logger}
	}

	h := &handlers.Handler{
		DB:        db,
		Logger:    logger,
		Auth:      middleware.NewAuth(cfg.JWT.Secret, cfg.JWT.Lifetime),
		Publisher: publisher,
		Notifier:  notifier,
		Payments:  payment.NewVerifier(cfg.Payment.Secret),
	}

	sweeper := scheduler.NewSweeper(db, publisher, logger, cfg.Scheduler.LookAhead)
	if err := sweeper.Start(cfg.Scheduler.Interval); err != nil {
		logger.Fatalw("failed to start order sweep", "error", err)
	}
	defer sweeper.Stop()

	r := gin.Default()

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Food Delivery Order Lifecycle API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "🍔 Welcome to the Food Delivery Order Lifecycle API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "restaurant", "delivery", "admin"},
		})
	})

	routes.SetupRoutes(r, h)

	logger.Infow("🚀 server starting", "port", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatalw("failed to start server", "error", err)
	}
}
