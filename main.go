package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/craftandcart/storefront/cart"
	"github.com/craftandcart/storefront/checkout"
	"github.com/craftandcart/storefront/config"
	"github.com/craftandcart/storefront/database"
	"github.com/craftandcart/storefront/events"
	"github.com/craftandcart/storefront/identity"
	"github.com/craftandcart/storefront/logger"
	"github.com/craftandcart/storefront/orders"
	"github.com/craftandcart/storefront/payment"
	"github.com/craftandcart/storefront/routes"
	"github.com/craftandcart/storefront/store"
	"github.com/craftandcart/storefront/wishlist"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger.Initialize(cfg.Environment)
	defer logger.Log.Sync()

	ctx := context.Background()

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to Redis: %v", err)
	}

	backend := store.NewRedisBackend(redisClient)
	notifier := store.NewRedisNotifier(redisClient, logger.Log)
	cartManager := cart.NewManager(backend, notifier)
	wishlistManager := wishlist.NewManager(backend, notifier)

	// Order histories live in Mongo by default; DynamoDB is the
	// alternate backend behind the same repository interface.
	var historyRepo orders.HistoryRepository
	switch cfg.OrderBackend {
	case "dynamodb":
		dynamoClient, err := database.NewDynamoClient(ctx)
		if err != nil {
			log.Fatalf("failed to create DynamoDB client: %v", err)
		}
		historyRepo = orders.NewDynamoHistoryAdapter(dynamoClient, cfg.DynamoTable)
	default:
		mongoClient, mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURL, cfg.MongoDB)
		if err != nil {
			log.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer database.CloseMongo(mongoClient)
		historyRepo = orders.NewMongoHistoryRepository(mongoDB)
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	gatewayClient := payment.NewHTTPClient(cfg.GatewayURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)
	bridge := payment.NewBridge(gatewayClient, cfg.Currency, "Craft & Cart", logger.Log)
	writer := orders.NewWriter(historyRepo, publisher, cfg.Currency, logger.Log)
	registry := checkout.NewRegistry(cartManager, bridge, writer, logger.Log)
	provider := identity.NewJWTProvider([]byte(cfg.JWTSecret), cfg.SignInURL)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())

	routes.Register(router, routes.Deps{
		Cart:     cartManager,
		Wishlist: wishlistManager,
		Registry: registry,
		Bridge:   bridge,
		Orders:   historyRepo,
		Identity: provider,
		Config:   *cfg,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Log.Info("storefront listening on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
	logger.Log.Info("server shutdown complete")
}
