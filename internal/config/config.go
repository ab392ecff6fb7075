package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	DB     DatabaseConfig
	Redis  RedisConfig
	App    AppConfig
	Wallet WalletConfig
	Logger LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Host            string `mapstructure:"DB_HOST"`
	Port            string `mapstructure:"DB_PORT"`
	User            string `mapstructure:"DB_USER"`
	Password        string `mapstructure:"DB_PASSWORD"`
	Name            string `mapstructure:"DB_NAME"`
	SSLMode         string `mapstructure:"DB_SSLMODE"`
	MaxOpenConns    int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int    `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
}

// RedisConfig holds configuration for the Redis session store
type RedisConfig struct {
	Host           string `mapstructure:"REDIS_HOST"`
	Port           string `mapstructure:"REDIS_PORT"`
	Password       string `mapstructure:"REDIS_PASSWORD"`
	DB             int    `mapstructure:"REDIS_DB"`
	MaxRetries     int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize       int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn    int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
	SessionTTLSecs int    `mapstructure:"REDIS_SESSION_TTL_SECONDS"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
}

// WalletConfig holds wallet domain configuration.
// DemoMode substitutes a configured fallback identity when no session exists.
// It bypasses authentication and must never be enabled in production.
type WalletConfig struct {
	StartingBalance  int64  `mapstructure:"WALLET_STARTING_BALANCE"`
	DemoMode         bool   `mapstructure:"WALLET_DEMO_MODE"`
	DemoUserID       string `mapstructure:"WALLET_DEMO_USER_ID"`
	DemoUserEmail    string `mapstructure:"WALLET_DEMO_USER_EMAIL"`
	DemoUserFullName string `mapstructure:"WALLET_DEMO_USER_FULL_NAME"`
	DemoUserBalance  int64  `mapstructure:"WALLET_DEMO_USER_BALANCE"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Host = viper.GetString("DB_HOST")
	config.DB.Port = viper.GetString("DB_PORT")
	config.DB.User = viper.GetString("DB_USER")
	config.DB.Password = viper.GetString("DB_PASSWORD")
	config.DB.Name = viper.GetString("DB_NAME")
	config.DB.SSLMode = viper.GetString("DB_SSLMODE")
	config.DB.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = viper.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")

	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.MaxRetries = viper.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = viper.GetInt("REDIS_MIN_IDLE_CONN")
	config.Redis.SessionTTLSecs = viper.GetInt("REDIS_SESSION_TTL_SECONDS")

	config.App.HTTPPort = viper.GetString("HTTP_PORT")
	config.App.ShutdownTimeoutSeconds = viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	config.Wallet.StartingBalance = viper.GetInt64("WALLET_STARTING_BALANCE")
	config.Wallet.DemoMode = viper.GetBool("WALLET_DEMO_MODE")
	config.Wallet.DemoUserID = viper.GetString("WALLET_DEMO_USER_ID")
	config.Wallet.DemoUserEmail = viper.GetString("WALLET_DEMO_USER_EMAIL")
	config.Wallet.DemoUserFullName = viper.GetString("WALLET_DEMO_USER_FULL_NAME")
	config.Wallet.DemoUserBalance = viper.GetInt64("WALLET_DEMO_USER_BALANCE")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	return &config, nil
}

// Validate checks configuration consistency before wiring dependencies.
func (c *Config) Validate() error {
	if c.Wallet.StartingBalance < 0 {
		return fmt.Errorf("starting balance must not be negative, got %d", c.Wallet.StartingBalance)
	}
	if c.Wallet.DemoMode && c.Wallet.DemoUserID == "" {
		return fmt.Errorf("demo mode enabled but no demo user id configured")
	}
	if c.Wallet.DemoMode && c.Wallet.DemoUserBalance < 0 {
		return fmt.Errorf("demo user balance must not be negative, got %d", c.Wallet.DemoUserBalance)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "wallet_account_service")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONN", 2)
	viper.SetDefault("REDIS_SESSION_TTL_SECONDS", 86400)

	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)

	// Every new profile starts with the platform welcome balance.
	viper.SetDefault("WALLET_STARTING_BALANCE", 13000000)
	viper.SetDefault("WALLET_DEMO_MODE", false)
	viper.SetDefault("WALLET_DEMO_USER_ID", "pro-trader-001")
	viper.SetDefault("WALLET_DEMO_USER_EMAIL", "trader@example.com")
	viper.SetDefault("WALLET_DEMO_USER_FULL_NAME", "VIP PRO TRADER")
	viper.SetDefault("WALLET_DEMO_USER_BALANCE", 130000000)

	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "wallet-account-service")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")
}

// DSN returns the PostgreSQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.Host, c.User, c.Password, c.Name, c.Port, c.SSLMode)
}
