// @title Community Portal API
// @version 1.0
// @description REST backend for the community portal: accounts, posts, events, and registrations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"munhuwese/config"
	authadapter "munhuwese/internal/adapters/auth"
	"munhuwese/internal/adapters/email"
	deliveryhttp "munhuwese/internal/delivery/http"
	"munhuwese/internal/delivery/http/controllers"
	"munhuwese/internal/delivery/http/middleware"
	"munhuwese/internal/repository/postgres"
	"munhuwese/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := config.NewLogger()

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewEventRegistrationRepository(db)
	postRepo := postgres.NewPostRepository(db)
	commentRepo := postgres.NewCommentRepository(db)

	codec := authadapter.NewJWTCodec(cfg.JWTSecret)
	hasher := authadapter.NewBcryptHasher(0)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKeyID,
			SecretAccessKey: cfg.SESSecretKey,
		},
	})
	if err != nil {
		log.Fatalf("mailer: %v", err)
	}
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)

	authService := services.NewAuthService(userRepo, hasher, codec, codec, cfg.SessionTTL, cfg.ResetTTL, emailService, cfg.ClientURL, logger)
	eventService := services.NewEventService(eventRepo, registrationRepo, userRepo, emailService, cfg.SweepRetention, cfg.ClientURL, logger)
	postService := services.NewPostService(postRepo, commentRepo)
	userService := services.NewUserService(userRepo, registrationRepo, hasher)
	dashboardService := services.NewDashboardService(postRepo, eventRepo)
	cleanupService := services.NewCleanupService(eventRepo, cfg.SweepInterval, cfg.SweepRetention, logger)

	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService, cfg.UploadsDir)
	postController := controllers.NewPostController(logger, postService, cfg.UploadsDir)
	userController := controllers.NewUserController(logger, userService, dashboardService, cfg.UploadsDir)

	mux := deliveryhttp.NewRouter(codec, cfg.UploadsDir, authController, eventController, postController, userController)

	var handler http.Handler = mux
	handler = middleware.SweepTrigger(cleanupService, handler)
	handler = middleware.LoggingMiddleware(logger, handler)
	handler = middleware.CORS(cfg.CORSOrigins, handler)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error("shutdown failed", "err", err)
	}
}
