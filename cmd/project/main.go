package main

import (
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/staffhub/internal/pkg/auth"
	"github.com/gartstein/staffhub/internal/pkg/events"
	"github.com/gartstein/staffhub/internal/pkg/httpapi"
	"github.com/gartstein/staffhub/internal/pkg/idempotency"
	"github.com/gartstein/staffhub/internal/pkg/metrics"
	"github.com/gartstein/staffhub/internal/project/client"
	"github.com/gartstein/staffhub/internal/project/controller"
	"github.com/gartstein/staffhub/internal/project/db"
	"github.com/gartstein/staffhub/internal/project/handlers"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config struct for YAML configuration
type Config struct {
	HTTPPort           int      `yaml:"HTTP_PORT"`
	DBHost             string   `yaml:"DB_HOST"`
	DBPort             int      `yaml:"DB_PORT"`
	DBUser             string   `yaml:"DB_USER"`
	DBPassword         string   `yaml:"DB_PASSWORD"`
	DBName             string   `yaml:"DB_NAME"`
	DBSSLMode          string   `yaml:"DB_SSLMODE"`
	KafkaBrokers       []string `yaml:"KAFKA_BROKERS"`
	Topic              string   `yaml:"TOPIC"`
	JWTSecret          string   `yaml:"JWT_SECRET"`
	EmployeeServiceURL string   `yaml:"EMPLOYEE_SERVICE_URL"`
	RemoteTimeoutMS    int      `yaml:"REMOTE_TIMEOUT_MS"`
	RedisAddr          string   `yaml:"REDIS_ADDR"`
}

func main() {
	logger := initLogger()
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := loadConfig()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	var repo *db.Repository
	err = backoff.Retry(func() error {
		repo, err = db.NewRepository(initDatabase(cfg))
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	var producer *events.Producer
	err = backoff.Retry(func() error {
		producer, err = events.NewProducer(cfg.KafkaBrokers, cfg.Topic, "project", logger)
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5))
	if err != nil {
		logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	employees := client.NewEmployeeDirectory(
		cfg.EmployeeServiceURL,
		time.Duration(cfg.RemoteTimeoutMS)*time.Millisecond,
		logger,
	)

	idem := initIdempotencyStore(cfg, logger)

	projSvc := controller.NewProjectService(repo, employees, producer, idem, logger)
	projHandler := handlers.NewProjectHandler(projSvc, logger)

	server := httpapi.NewServer(cfg.HTTPPort, logger)
	router := server.Router()
	router.Use(metrics.Middleware("project"))
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := router.Group("/v1")
	v1.Use(auth.Middleware(cfg.JWTSecret))
	projHandler.Register(v1)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	waitForShutdown(server, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

func loadConfig() (*Config, error) {
	configPath := filepath.Join("internal", "project", "config", "config.yaml")
	if env := os.Getenv("PROJECT_CONFIG"); env != "" {
		configPath = env
	}
	file, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func initDatabase(cfg *Config) *db.Config {
	return &db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

func initIdempotencyStore(cfg *Config, logger *zap.Logger) idempotency.Store {
	if cfg.RedisAddr == "" {
		return idempotency.NewMemoryStore()
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	logger.Info("using Redis idempotency store", zap.String("addr", cfg.RedisAddr))
	return idempotency.NewRedisStore(rdb, 24*time.Hour)
}

// waitForShutdown blocks until an interrupt or SIGTERM is received.
func waitForShutdown(server *httpapi.Server, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	server.Stop()
	logger.Info("Server stopped properly")
}
