package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
)

var (
	config     *Config
	configOnce sync.Once
)

// 支持的数据库驱动
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string `env:"ENV_TYPE" envDefault:"LOCAL"`

	// Server
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	CORSAllowOrigin string        `env:"CORS_ALLOW_ORIGIN" envDefault:"http://localhost:5173"`

	// Database
	DBDriver        string `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost          string `env:"DB_HOST" envDefault:"localhost"`
	DBPort          string `env:"DB_PORT" envDefault:"3306"`
	DBUser          string `env:"DB_USER" envDefault:"root"`
	DBPassword      string `env:"DB_PASSWORD"`
	DBName          string `env:"DB_NAME" envDefault:"assetverse"`
	DBSQLitePath    string `env:"DB_SQLITE_PATH" envDefault:"assetverse.db"`
	DBMigrationMode string `env:"DB_MIGRATION_MODE" envDefault:"auto"` // 数据库迁移模式: "auto"(默认), "drop"(删除重建)
	DBLogLevel      string `env:"DB_LOG_LEVEL" envDefault:"warn"`
	DBMaxRetries    int    `env:"DB_MAX_RETRIES" envDefault:"5"` // 序列化失败或死锁时的最大重试次数

	// Redis
	RedisEnabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT Authentication
	JWTSecretKey string        `env:"JWT_SECRET_KEY" envDefault:"assetverse-secret-key-change-in-production"`
	JWTTTL       time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Business
	DefaultPackageLimit int `env:"DEFAULT_PACKAGE_LIMIT" envDefault:"5"` // 新注册HR的员工上限
	CatalogPageSize     int `env:"CATALOG_PAGE_SIZE" envDefault:"6"`

	// Payment checkout
	CheckoutBaseURL       string `env:"CHECKOUT_BASE_URL" envDefault:"http://localhost:5173/payment"`
	CheckoutWebhookSecret string `env:"CHECKOUT_WEBHOOK_SECRET" envDefault:"assetverse-checkout-secret"`

	// MQTT配置
	MQTTEnabled     bool   `env:"MQTT_ENABLED" envDefault:"false"`
	MQTTBrokerURL   string `env:"MQTT_BROKER_URL" envDefault:"tcp://localhost:1883"` // MQTT服务器地址，如 tcp://broker.example.com:1883
	MQTTClientID    string `env:"MQTT_CLIENT_ID" envDefault:"assetverse_server"`
	MQTTUsername    string `env:"MQTT_USERNAME"`
	MQTTPassword    string `env:"MQTT_PASSWORD"`
	MQTTQoS         int    `env:"MQTT_QOS" envDefault:"1"` // 服务质量 (0, 1, 2)
	MQTTTopicPrefix string `env:"MQTT_TOPIC_PREFIX" envDefault:"assetverse"`

	// Tracing
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// LoadConfig loads config from environment variables based on ENV_TYPE.
// Variables carrying the environment prefix (LOCAL_ or SERVER_) override
// their unprefixed counterparts.
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(environ())
}

// LoadConfigFrom parses configuration from the given environment map
func LoadConfigFrom(environment map[string]string) (*Config, error) {
	envType := strings.ToUpper(environment["ENV_TYPE"])
	var prefix string
	switch envType {
	case "", "LOCAL":
		envType = "LOCAL"
		prefix = "LOCAL_"
	case "SERVER":
		prefix = "SERVER_"
	default:
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		envType = "LOCAL"
		prefix = "LOCAL_"
	}

	merged := make(map[string]string, len(environment))
	for k, v := range environment {
		merged[k] = v
	}
	for k, v := range environment {
		if strings.HasPrefix(k, prefix) && len(k) > len(prefix) {
			merged[strings.TrimPrefix(k, prefix)] = v
		}
	}
	merged["ENV_TYPE"] = envType

	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: merged}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置的合法性
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DefaultPackageLimit < 0 {
		return fmt.Errorf("DEFAULT_PACKAGE_LIMIT must not be negative")
	}
	if c.CatalogPageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive")
	}
	if c.MQTTQoS < 0 || c.MQTTQoS > 2 {
		return fmt.Errorf("MQTT_QOS must be 0, 1 or 2")
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	return nil
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			panic(fmt.Sprintf("load config: %v", err))
		}
		fmt.Printf("Loading configuration for environment: %s\n", cfg.EnvType)
		config = cfg
	})
	return config
}

// GetDSN returns the database connection string for the configured driver
func (c *Config) GetDSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	case DriverSQLite:
		return c.DBSQLitePath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	default:
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true"
	}
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

func environ() map[string]string {
	out := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			out[k] = v
		}
	}
	return out
}
