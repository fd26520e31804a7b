package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/database"
	"github.com/princinho/elearnbackend/logging"
	"github.com/princinho/elearnbackend/mail"
	"github.com/princinho/elearnbackend/payment"
	"github.com/princinho/elearnbackend/services"
	"github.com/princinho/elearnbackend/session"
	"github.com/princinho/elearnbackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(os.Stdout, cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error(ctx, "mongo disconnect", "err", err)
		}
	}()
	db := mongoClient.Database(cfg.DatabaseName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("ensure indexes: %v", err)
	}

	userStore := database.NewUserStore(database.OpenCollection(mongoClient, cfg.DatabaseName, database.UsersCollection))
	courseStore := database.NewCourseStore(database.OpenCollection(mongoClient, cfg.DatabaseName, database.CoursesCollection))
	orderStore := database.NewOrderStore(database.OpenCollection(mongoClient, cfg.DatabaseName, database.OrdersCollection))
	notificationStore := database.NewNotificationStore(database.OpenCollection(mongoClient, cfg.DatabaseName, database.NotificationsCollection))
	layoutStore := database.NewLayoutStore(database.OpenCollection(mongoClient, cfg.DatabaseName, database.LayoutsCollection))

	rdb, err := session.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("init session cache: %v", err)
	}
	defer rdb.Close()
	cache := session.NewRedisCache(rdb, cfg.SessionKeyPrefix, cfg.Tokens.SessionTTL)

	issuer, err := auth.NewIssuer(cfg.Tokens)
	if err != nil {
		log.Fatalf("init token issuer: %v", err)
	}
	sessions := auth.NewSessionManager(issuer, cache, userStore)

	var images services.ImageStore
	if cfg.Storage.Enabled() {
		r2, err := utils.NewR2Client(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("init object storage: %v", err)
		}
		images = r2
	} else {
		logger.Warn(ctx, "object storage not configured; image uploads disabled")
	}

	var mailer services.Mailer = mail.NewLogMailer(logger)
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTPMailer(cfg.SMTP)
	} else {
		logger.Warn(ctx, "SMTP not configured; mails are logged only")
	}

	var social services.SocialVerifier
	if cfg.GoogleClientID != "" {
		google, err := auth.NewGoogleVerifier(ctx, cfg.GoogleClientID)
		if err != nil {
			log.Fatalf("init google sign-in: %v", err)
		}
		social = google
	}

	payments := payment.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.PublishableKey)

	app := &application{
		cfg:           cfg,
		log:           logger,
		sessions:      sessions,
		users:         services.NewUserService(userStore, issuer, sessions, mailer, images, social, logger),
		courses:       services.NewCourseService(courseStore, images, logger),
		orders:        services.NewOrderService(userStore, courseStore, orderStore, notificationStore, sessions, payments, mailer, logger),
		notifications: services.NewNotificationService(notificationStore, logger),
		layouts:       services.NewLayoutService(layoutStore, images, logger),
		analytics:     services.NewAnalyticsService(userStore, courseStore, orderStore),
		socialAuth:    social != nil,
	}

	if err := utils.SeedAdminUser(ctx, userStore, cfg.Admin, logger); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	go app.notifications.RunPruner(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           newRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error(ctxShutdown, "graceful shutdown error", "err", err)
	}
}
