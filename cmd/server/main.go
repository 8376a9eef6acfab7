package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ridelanka/booking-backend/internal/config"
	"github.com/ridelanka/booking-backend/internal/database"
	"github.com/ridelanka/booking-backend/internal/handlers"
	"github.com/ridelanka/booking-backend/internal/middleware"
	"github.com/ridelanka/booking-backend/internal/models"
	"github.com/ridelanka/booking-backend/internal/services"
	"github.com/ridelanka/booking-backend/pkg/jwt"
	"github.com/ridelanka/booking-backend/pkg/notify"
	"github.com/ridelanka/booking-backend/pkg/ticket"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting RideLanka Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize stores: Postgres when configured, in-memory otherwise
	var (
		tripStore    services.TripStore
		bookingStore services.BookingStore
		anomalyStore interface {
			services.AnomalyReporter
			handlers.AnomalyLister
		}
		rebuild func(inventory *services.SeatInventory) error
	)

	if cfg.Database.URL != "" {
		logger.Info("Connecting to database...")
		db, err := database.NewConnection(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		logger.Info("Database connection established")

		tripRepo := database.NewTripRepository(db)
		bookingRepo := database.NewBookingRepository(db)
		tripStore = tripRepo
		bookingStore = bookingRepo
		anomalyStore = bookingRepo
		rebuild = func(inventory *services.SeatInventory) error {
			return rebuildInventory(inventory, tripRepo, bookingRepo, logger)
		}
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory store (development only)")
		memory := database.NewMemoryStore()
		seedDemoTrips(memory, logger)
		tripStore = memory
		bookingStore = memory
		anomalyStore = memory
	}

	// Initialize services
	logger.Info("Initializing services...")
	clock := services.SystemClock()

	inventory := services.NewSeatInventory(tripStore, logger)
	holds := services.NewHoldManager(inventory, clock, logger)
	lifecycle := services.NewBookingLifecycle(bookingStore, holds, clock, logger)

	if rebuild != nil {
		if err := rebuild(inventory); err != nil {
			logger.Fatalf("Failed to rebuild seat inventory: %v", err)
		}
	}

	// Payment gateway: live PAYable client when credentials are present
	var gateway services.PaymentGateway
	var verifier handlers.WebhookVerifier
	payable := services.NewPayableGateway(&cfg.Payment, logger)
	verifier = payable
	if payable.IsConfigured() {
		gateway = payable
		logger.Infof("Payment gateway configured (%s)", cfg.Payment.Environment)
	} else {
		logger.Warn("Payment gateway not configured; bookings use local payment references")
	}

	// Ticket issuance and notification dispatch
	codec := ticket.NewCodec(cfg.Ticket.SigningSecret, cfg.Ticket.Issuer)
	var sender notify.Sender
	if cfg.Notification.Mode == "production" && cfg.Notification.APIURL != "" {
		sender = notify.NewDispatchClient(notify.DispatchConfig{
			APIURL: cfg.Notification.APIURL,
			APIKey: cfg.Notification.APIKey,
		})
	} else {
		sender = &notify.LogSender{Logger: logger}
	}
	notifier := services.NewNotificationService(sender, cfg.Notification.TicketBaseURL)
	issuer := services.NewTicketIssuer(tripStore, codec, notifier, logger)

	reconciler := services.NewPaymentReconciler(bookingStore, lifecycle, issuer, anomalyStore, clock, logger)

	bookingConfig := services.BookingConfig{
		HoldTTL:         cfg.Booking.HoldTTL,
		SweepInterval:   cfg.Booking.SweepInterval,
		DefaultCurrency: cfg.Booking.DefaultCurrency,
	}
	bookingService := services.NewBookingService(
		tripStore, bookingStore, holds, lifecycle, inventory,
		gateway, clock, bookingConfig, logger,
	)

	sweeper := services.NewExpirySweeper(bookingStore, lifecycle, clock, logger, cfg.Booking.SweepInterval)
	sweeper.Start()
	logger.Info("Expiry sweeper started")

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	webhookHandler := handlers.NewPaymentWebhookHandler(verifier, reconciler, logger)
	anomalyHandler := handlers.NewAnomalyHandler(anomalyStore, logger)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthCheckHandler())

	v1 := router.Group("/api/v1")
	{
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", bookingHandler.CreateBooking)
			bookings.GET("/:lookupCode", bookingHandler.GetBooking)
			bookings.POST("/:lookupCode/cancel", bookingHandler.CancelBooking)
		}

		v1.GET("/trips/:tripId/seats", bookingHandler.GetTripSeatMap)

		v1.POST("/payments/webhook", webhookHandler.PaymentWebhook)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtService), middleware.RequireRole("admin"))
		{
			admin.GET("/anomalies", anomalyHandler.ListAnomalies)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("Shutting down server...")

		sweeper.Stop()
		logger.Info("Expiry sweeper stopped")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		logger.Fatalf("Shutdown error: %v", err)
	}

	logger.Info("Server exited successfully")
}

// rebuildInventory replays active bookings into the in-memory seat state so
// a restart does not forget which seats are held or sold.
func rebuildInventory(
	inventory *services.SeatInventory,
	tripRepo *database.TripRepository,
	bookingRepo *database.BookingRepository,
	logger *logrus.Logger,
) error {
	trips, err := tripRepo.ListUpcomingTrips()
	if err != nil {
		return fmt.Errorf("failed to list trips: %w", err)
	}

	var restored int
	for _, trip := range trips {
		bookings, err := bookingRepo.GetActiveBookingsByTrip(trip.ID)
		if err != nil {
			return fmt.Errorf("failed to load bookings for trip %s: %w", trip.ID, err)
		}
		for _, booking := range bookings {
			if err := inventory.TryReserve(booking.TripID, booking.SeatCodes, booking.ID); err != nil {
				logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to restore seat claim")
				continue
			}
			if booking.Status == models.BookingStatusConfirmed {
				if err := inventory.MarkSold(booking.TripID, booking.SeatCodes, booking.ID); err != nil {
					logger.WithError(err).WithField("booking_id", booking.ID).Error("Failed to restore sold seats")
					continue
				}
			}
			restored++
		}
	}

	logger.WithField("bookings", restored).Info("Seat inventory rebuilt from active bookings")
	return nil
}

// seedDemoTrips registers a couple of trips for in-memory development runs.
func seedDemoTrips(store *database.MemoryStore, logger *logrus.Logger) {
	departure := time.Now().Add(24 * time.Hour).Truncate(time.Hour)

	store.AddTrip(&models.Trip{
		ID:                "trip-colombo-kandy-0800",
		RouteName:         "Route 1 Express",
		OriginStop:        "Colombo Fort",
		DestinationStop:   "Kandy",
		DepartureDatetime: departure,
		Floors:            1,
		Rows:              12,
		Cols:              4,
		SeatPrice:         1500,
		Currency:          "LKR",
	})
	store.AddTrip(&models.Trip{
		ID:                "trip-colombo-galle-0930",
		RouteName:         "Southern Highway Express",
		OriginStop:        "Colombo Fort",
		DestinationStop:   "Galle",
		DepartureDatetime: departure.Add(90 * time.Minute),
		Floors:            2,
		Rows:              10,
		Cols:              4,
		SeatPrice:         1200,
		Currency:          "LKR",
	})

	logger.Info("Seeded demo trips for in-memory store")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
		}

		entry := logger.WithFields(fields)
		status := c.Writer.Status()
		switch {
		case len(c.Errors) > 0:
			entry.WithField("errors", c.Errors.String()).Error("Request failed with errors")
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
