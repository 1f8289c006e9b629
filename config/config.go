package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	Environment string

	RedisURL string

	MongoURL     string
	MongoDB      string
	OrderBackend string // "mongo" or "dynamodb"
	DynamoTable  string

	KafkaBrokers []string
	KafkaTopic   string

	GatewayURL       string
	GatewayKeyID     string
	GatewayKeySecret string
	Currency         string

	JWTSecret    string
	SignInURL    string
	StoreURL     string
	SupportEmail string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379"),

		MongoURL:     getEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:      getEnv("MONGO_DB", "storefront"),
		OrderBackend: getEnv("ORDER_BACKEND", "mongo"),
		DynamoTable:  getEnv("DYNAMO_ORDER_TABLE", "order-histories"),

		KafkaTopic: getEnv("KAFKA_TOPIC", "order.created"),

		GatewayURL:       getEnv("PAYMENT_GATEWAY_URL", ""),
		GatewayKeyID:     os.Getenv("PAYMENT_GATEWAY_KEY_ID"),
		GatewayKeySecret: os.Getenv("PAYMENT_GATEWAY_KEY_SECRET"),
		Currency:         getEnv("CURRENCY", "INR"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		SignInURL:    getEnv("SIGN_IN_URL", "/auth/login"),
		StoreURL:     getEnv("STORE_URL", "http://localhost:3000"),
		SupportEmail: getEnv("SUPPORT_EMAIL", "support@craftandcart.example"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}

	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("PAYMENT_GATEWAY_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.OrderBackend != "mongo" && cfg.OrderBackend != "dynamodb" {
		return nil, fmt.Errorf("ORDER_BACKEND must be mongo or dynamodb, got %q", cfg.OrderBackend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
