package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/seniorstay/staycation-api/internal/api"
	"github.com/seniorstay/staycation-api/internal/api/admin"
	"github.com/seniorstay/staycation-api/internal/api/auth"
	"github.com/seniorstay/staycation-api/internal/api/bookings"
	"github.com/seniorstay/staycation-api/internal/api/hotels"
	"github.com/seniorstay/staycation-api/internal/api/payment"
	"github.com/seniorstay/staycation-api/internal/api/rooms"
	"github.com/seniorstay/staycation-api/internal/api/services"
	"github.com/seniorstay/staycation-api/internal/api/users"
	"github.com/seniorstay/staycation-api/internal/config"
	kafkax "github.com/seniorstay/staycation-api/internal/kafka"
	"github.com/seniorstay/staycation-api/internal/logger"
	"github.com/seniorstay/staycation-api/internal/middleware"
	redisx "github.com/seniorstay/staycation-api/internal/redis"
	adminService "github.com/seniorstay/staycation-api/internal/service/admin"
	authService "github.com/seniorstay/staycation-api/internal/service/auth"
	bookingsService "github.com/seniorstay/staycation-api/internal/service/bookings"
	paymentService "github.com/seniorstay/staycation-api/internal/service/payment"
	usersService "github.com/seniorstay/staycation-api/internal/service/users"
	"github.com/seniorstay/staycation-api/internal/store"
	storeAdmin "github.com/seniorstay/staycation-api/internal/store/admin"
	storeBookings "github.com/seniorstay/staycation-api/internal/store/bookings"
	storeHotels "github.com/seniorstay/staycation-api/internal/store/hotels"
	storePayments "github.com/seniorstay/staycation-api/internal/store/payments"
	storeRooms "github.com/seniorstay/staycation-api/internal/store/rooms"
	storeServices "github.com/seniorstay/staycation-api/internal/store/services"
	storeUsers "github.com/seniorstay/staycation-api/internal/store/users"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.New(cfg.Env, cfg.LogFile)
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	db, err := store.NewDB(ctx, cfg.PostgresURL, int32(cfg.MaxDBConnections))
	if err != nil {
		log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	if created, err := config.CreateDefaultAdmin(ctx, &cfg, db); err != nil {
		log.Error("Failed to create default admin user", zap.Error(err))
	} else if created {
		log.Info("Default admin user created", zap.String("email", cfg.AdminEmail))
	}

	redisClient := redisx.NewClient(cfg.RedisAddr)
	revocations := redisx.NewRevocations(redisClient)
	defer revocations.Close()

	// Kafka is optional; without brokers events are not published.
	var bookingEvents bookingsService.Publisher
	var paymentEvents paymentService.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafkax.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		bookingEvents, paymentEvents = producer, producer
	} else {
		log.Warn("KAFKA_BROKERS not set, booking events disabled")
	}

	// Repositories
	bookingsRepo := storeBookings.NewBookingsRepository(db, log)
	hotelsRepo := storeHotels.NewHotelsRepository(db, log)
	roomsRepo := storeRooms.NewRoomsRepository(db, log)
	servicesRepo := storeServices.NewServicesRepository(db, log)
	usersRepo := storeUsers.NewUsersRepository(db, log)
	paymentsRepo := storePayments.NewPaymentsRepository(db, log)
	adminRepo := storeAdmin.NewAdminRepository(db, log)

	// Services
	bookingsSvc := bookingsService.NewBookingsService(log, bookingsRepo, bookingEvents, cfg.StrictOverlapCheck)
	authSvc := authService.NewAuthService(log, usersRepo, revocations, cfg.JWTSigningSecret, cfg.JWTTTL)
	usersSvc := usersService.NewUsersService(log, usersRepo)
	paymentSvc := paymentService.NewPaymentService(log, paymentsRepo, paymentEvents)
	dashboardSvc := adminService.NewDashboardService(log, adminRepo)

	jwtAuth := middleware.NewAuth(cfg.JWTSigningSecret, revocations, usersRepo, log)
	userLimit := middleware.UserRateLimit(redisClient, cfg.UserRateLimitRPS, cfg.UserRateLimitBurst)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	api.RegisterRoutes(r, api.Deps{
		Log:            log,
		Redis:          redisClient,
		DB:             db,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
		Handlers: []api.Registrar{
			auth.NewAuthHandler(log, authSvc, jwtAuth, cfg.CookieSecure),
			bookings.NewBookingsHandler(log, bookingsSvc, jwtAuth).WithRateLimit(userLimit),
			hotels.NewHotelsHandler(log, hotelsRepo, jwtAuth),
			rooms.NewRoomsHandler(log, roomsRepo, jwtAuth),
			services.NewServicesHandler(log, servicesRepo, jwtAuth),
			users.NewUsersHandler(log, usersSvc, jwtAuth).WithRateLimit(userLimit),
			payment.NewPaymentHandler(log, paymentSvc, jwtAuth),
			admin.NewAdminHandler(log, dashboardSvc, jwtAuth),
		},
	})

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   20 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Info("server starting", zap.Int("port", cfg.HTTPPort), zap.Bool("strict_overlap_check", cfg.StrictOverlapCheck))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("server exited")
}
