// internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"orgbilling-service/internal/config"
	"orgbilling-service/internal/db"
	billingHandler "orgbilling-service/internal/handlers/billing"
	webhookHandler "orgbilling-service/internal/handlers/webhook"
	"orgbilling-service/internal/middleware"
	"orgbilling-service/internal/pkg/dedup"
	"orgbilling-service/internal/pkg/jwt"
	"orgbilling-service/internal/pkg/ratelimit"
	"orgbilling-service/internal/repository/postgres"
	billingUsecase "orgbilling-service/internal/service/billing"
	"orgbilling-service/internal/service/email"
	"orgbilling-service/internal/service/stripesync"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	http   *http.Server
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

func NewServer() *Server {
	cfg := config.Load()
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return &Server{cfg: cfg, engine: gin.New()}
}

// Init wires every dependency. It must return before Run and Shutdown are
// called; on error Shutdown releases whatever was opened.
func (s *Server) Init(ctx context.Context) error {
	// ----- Logger -----
	logger, err := newLogger(s.cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, db.PostgresConfig{
		URL:      s.cfg.DatabaseURL,
		MaxConns: s.cfg.DBMaxConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	dbWrapper := postgres.NewDB(pool)
	if s.cfg.DBAutoMigrate {
		if err := dbWrapper.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
		logger.Info("database schema ensured")
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Address:  s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	s.redis = redisClient
	logger.Info("connected to redis", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT -----
	verifier, err := jwt.LoadVerifier(s.cfg.JWTPublicKeyPath, s.cfg.JWTIssuer, s.cfg.JWTAudience)
	if err != nil {
		return fmt.Errorf("failed to load JWT verifier: %w", err)
	}

	// ----- Email -----
	emailSender := email.NewEmailSender(
		s.cfg.SMTPHost,
		s.cfg.SMTPPort,
		s.cfg.SMTPUser,
		s.cfg.SMTPPass,
		s.cfg.SMTPFromName,
		s.cfg.SMTPSecure,
	)

	// ----- Repositories -----
	orgRepo := postgres.NewOrganizationRepository(pool)
	membershipRepo := postgres.NewMembershipRepository(pool)
	priceRepo := postgres.NewPriceRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	scheduleRepo := postgres.NewSubscriptionScheduleRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool, scheduleRepo)

	// ----- Services (Usecases) -----
	billingService := billingUsecase.NewBillingService(orgRepo, membershipRepo, subscriptionRepo, logger)
	contactSalesService := billingUsecase.NewContactSalesService(
		billingService,
		ratelimit.NewRateLimiter(redisClient, "contact_sales"),
		emailSender,
		s.cfg.SalesEmail,
		logger,
	)

	var customers stripesync.CustomerUpdater
	if s.cfg.StripeSecretKey != "" {
		customers = stripesync.NewStripeCustomerUpdater(s.cfg.StripeSecretKey)
	} else {
		logger.Warn("STRIPE_SECRET_KEY not set, customer records will not be updated")
	}
	synchronizer := stripesync.NewSynchronizer(stripesync.Repositories{
		Organizations: orgRepo,
		Subscriptions: subscriptionRepo,
		Prices:        priceRepo,
		Products:      productRepo,
		Schedules:     scheduleRepo,
	}, customers, logger, s.cfg.IsProduction())

	if s.cfg.StripeWebhookSecret == "" {
		logger.Warn("STRIPE_WEBHOOK_SECRET not set, webhooks will be rejected")
	}

	// ----- Handlers -----
	handlers := &Handlers{
		BillingHandler: billingHandler.NewBillingHandler(billingService, contactSalesService),
		StripeHandler: webhookHandler.NewStripeHandler(
			s.cfg.StripeWebhookSecret,
			synchronizer,
			dedup.NewDeduper(redisClient, "stripe:event", dedup.DefaultTTL),
			logger,
		),
		AuthMiddleware: middleware.NewAuthMiddleware(verifier),
	}

	// ----- Middlewares -----
	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.CORSAllowedOrigins),
	)

	// ----- Router -----
	SetupRouter(s.engine, handlers)

	s.http = &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Run blocks serving HTTP until Shutdown.
func (s *Server) Run() error {
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and closes the pools.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.logger != nil {
		_ = s.logger.Sync()
	}
	return errors.Join(errs...)
}

func newLogger(cfg config.AppConfig) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
