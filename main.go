package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/cache"
	"github.com/junaidrashid-git/storefront-api/config"
	"github.com/junaidrashid-git/storefront-api/database"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/mailer"
	"github.com/junaidrashid-git/storefront-api/middleware"
	"github.com/junaidrashid-git/storefront-api/payments"
	"github.com/junaidrashid-git/storefront-api/routes"
	"github.com/junaidrashid-git/storefront-api/services"
	"github.com/redis/go-redis/v9"
)

func main() {
	log.Println("✅ Starting application...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init DB
	db, err := database.Open(cfg.DSN())
	if err != nil {
		log.Fatalf("❌ DB connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}

	// Optional backends
	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️ Redis at %s unreachable, cart cache disabled: %v", cfg.RedisAddr, err)
		} else {
			cartCache = cache.NewRedisCache(rdb)
			log.Printf("✅ Cart cache on Redis %s", cfg.RedisAddr)
		}
	}

	hub := events.NewHub()
	publisher := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaOrderTopic, cfg.KafkaBrokers...)
		defer kafka.Close()
		publisher = append(publisher, kafka)
		log.Printf("✅ Publishing order events to Kafka topic %s", cfg.KafkaOrderTopic)
	}

	var sender mailer.Sender = mailer.Disabled{}
	var orderMailer services.OrderMailer
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTP(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		orderMailer = mailer.NewNotifier(sender)
	} else {
		log.Println("ℹ️ SMTP_HOST not set, email is disabled")
	}

	var gateway payments.Gateway = payments.Disabled{}
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripe(payments.StripeConfig{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.StripeSuccessURL,
			CancelURL:     cfg.StripeCancelURL,
			Currency:      cfg.StripeCurrency,
		})
	} else {
		log.Println("ℹ️ STRIPE_SECRET_KEY not set, payments are disabled")
	}

	// Services
	carts := services.NewCartService(db, cartCache, cfg.CartItemTTL)
	orders := services.NewOrderService(db, carts, publisher, orderMailer, cfg.PaymentWindow)
	users := services.NewUserService(db, carts)
	sweeper := services.NewSweeper(carts, orders)

	// Gin setup
	r := gin.Default()
	r.MaxMultipartMemory = 32 << 20
	r.Use(middleware.RequestID)
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.SetupRoutes(r, &routes.Deps{
		DB:             db,
		Tokens:         auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Users:          users,
		Carts:          carts,
		Catalog:        services.NewCatalogService(db, carts),
		Inventory:      services.NewInventoryService(db),
		Orders:         orders,
		Payments:       services.NewPaymentService(db, orders, gateway),
		Sweeper:        sweeper,
		Hub:            hub,
		Mailer:         sender,
		TokenRateLimit: cfg.TokenRateLimit,
	})

	// Expired cart items and unpaid orders
	go sweeper.Run(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("🚀 Server running on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Graceful shutdown failed: %v", err)
	}
}
