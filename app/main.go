package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agrizen/config"
	"agrizen/delivery"
	"agrizen/domain"
	"agrizen/middleware"
	"agrizen/repository"
	"agrizen/service"
	"agrizen/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using system environment variables")
	}
	utils.InitLogger()

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterCustomValidations(v)
	}

	db, err := config.BootDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to boot database")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal().Msg("JWT_SECRET not found in env")
	}
	if len(jwtSecret) < 32 {
		log.Fatal().Msg("JWT_SECRET must be at least 32 characters. Generate one with: openssl rand -base64 32")
	}

	// Challenge storage: redis when configured, otherwise the
	// in-process sharded store.
	var challengeStore domain.ChallengeStore
	var authLimiter middleware.RateLimiter
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		redisClient, err := config.InitRedisDB(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		challengeStore = repository.NewRedisChallengeStore(redisClient)
		authLimiter = middleware.NewRedisRateLimiter(redisClient)
	} else {
		log.Warn().Msg("REDIS_ADDR not set, holding OTP challenges in process memory")
		challengeStore = repository.NewMemoryChallengeStore()
	}

	userRepo := repository.NewUserRepository(db)
	farmerRepo := repository.NewFarmerRepository(db)

	emailSender := service.NewEmailSender()
	smsSender := service.NewSMSSender(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_PHONE_NUMBER"),
	)

	otpService := service.NewOTPService(challengeStore, emailSender, smsSender)

	// Periodic sweep bounds memory held by abandoned challenges;
	// verification checks expiry on its own, so losing a tick is fine.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if err := otpService.Sweep(context.Background()); err != nil {
				log.Warn().Err(err).Msg("challenge sweep failed")
			}
		}
	}()

	identityService := service.NewIdentityService(userRepo, farmerRepo)
	authService := service.NewAuthService(userRepo, otpService, identityService, jwtSecret)

	app := gin.New()
	config.InitMiddleware(app)

	delivery.NewAuthHandler(app, authService, authLimiter)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        app,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited gracefully")
}
