// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	minHistoryDays = 90
	maxHistoryDays = 180
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Analytics AnalyticsConfig
	Storage   StorageConfig
	LogLevel  string
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL renders the connection as a postgres:// URL for the pgx driver.
// Credentials and database name are escaped.
func (c DatabaseConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, c.Port),
		Path:   "/" + c.DBName,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

type CacheConfig struct {
	Enabled          bool
	RedisURL         string
	RedisHost        string
	RedisPort        string
	RedisPassword    string
	RedisDB          int
	ForecastTTLHours int
	MovementTTLHours int
}

// ForecastTTL is used for forecasts, anomalies, procurement and the dashboard.
func (c CacheConfig) ForecastTTL() time.Duration {
	return time.Duration(c.ForecastTTLHours) * time.Hour
}

func (c CacheConfig) MovementTTL() time.Duration {
	return time.Duration(c.MovementTTLHours) * time.Hour
}

type AnalyticsConfig struct {
	HistoryDays          int
	ForecastHorizonDays  int
	SmoothingAlpha       float64
	AnomalyThreshold     float64
	MinStockDays         int
	MovementWindowDays   int
	LedgerTimeoutSeconds int
	Workers              int
}

func (c AnalyticsConfig) LedgerTimeout() time.Duration {
	return time.Duration(c.LedgerTimeoutSeconds) * time.Second
}

// StorageConfig points the seed importer at a directory or an S3-compatible bucket.
type StorageConfig struct {
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		setDefaults()
		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Cache: CacheConfig{
				Enabled:          viper.GetBool("CACHE_ENABLED"),
				RedisURL:         viper.GetString("REDIS_URL"),
				RedisHost:        viper.GetString("REDIS_HOST"),
				RedisPort:        viper.GetString("REDIS_PORT"),
				RedisPassword:    viper.GetString("REDIS_PASSWORD"),
				RedisDB:          viper.GetInt("REDIS_DB"),
				ForecastTTLHours: viper.GetInt("CACHE_FORECAST_TTL_HOURS"),
				MovementTTLHours: viper.GetInt("CACHE_MOVEMENT_TTL_HOURS"),
			},
			Analytics: AnalyticsConfig{
				HistoryDays:          clampHistoryDays(viper.GetInt("ANALYTICS_HISTORY_DAYS")),
				ForecastHorizonDays:  viper.GetInt("ANALYTICS_FORECAST_HORIZON_DAYS"),
				SmoothingAlpha:       viper.GetFloat64("ANALYTICS_SMOOTHING_ALPHA"),
				AnomalyThreshold:     viper.GetFloat64("ANALYTICS_ANOMALY_THRESHOLD"),
				MinStockDays:         viper.GetInt("ANALYTICS_MIN_STOCK_DAYS"),
				MovementWindowDays:   viper.GetInt("ANALYTICS_MOVEMENT_WINDOW_DAYS"),
				LedgerTimeoutSeconds: viper.GetInt("ANALYTICS_LEDGER_TIMEOUT_SECONDS"),
				Workers:              viper.GetInt("ANALYTICS_WORKERS"),
			},
			Storage: StorageConfig{
				LocalDir:  viper.GetString("STORAGE_LOCAL_DIR"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			LogLevel: viper.GetString("LOG_LEVEL"),
		}
	})

	return instance
}

func setDefaults() {
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_MODE", "debug")
	viper.SetDefault("SERVER_READ_TIMEOUT", 30)
	viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_NAME", "inventory")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("CACHE_ENABLED", false)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("REDIS_HOST", "127.0.0.1")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("CACHE_FORECAST_TTL_HOURS", 6)
	viper.SetDefault("CACHE_MOVEMENT_TTL_HOURS", 12)
	viper.SetDefault("ANALYTICS_HISTORY_DAYS", 90)
	viper.SetDefault("ANALYTICS_FORECAST_HORIZON_DAYS", 30)
	viper.SetDefault("ANALYTICS_SMOOTHING_ALPHA", 0.3)
	viper.SetDefault("ANALYTICS_ANOMALY_THRESHOLD", 2.5)
	viper.SetDefault("ANALYTICS_MIN_STOCK_DAYS", 14)
	viper.SetDefault("ANALYTICS_MOVEMENT_WINDOW_DAYS", 90)
	viper.SetDefault("ANALYTICS_LEDGER_TIMEOUT_SECONDS", 10)
	viper.SetDefault("ANALYTICS_WORKERS", 4)
	viper.SetDefault("STORAGE_LOCAL_DIR", "")
	viper.SetDefault("STORAGE_ENDPOINT", "")
	viper.SetDefault("STORAGE_REGION", "us-east-1")
	viper.SetDefault("STORAGE_USE_SSL", true)
	viper.SetDefault("LOG_LEVEL", "info")
}

// clampHistoryDays keeps the analysis window inside the supported 90–180 day range.
func clampHistoryDays(days int) int {
	if days < minHistoryDays {
		return minHistoryDays
	}
	if days > maxHistoryDays {
		return maxHistoryDays
	}
	return days
}
