// Package config loads the cookbook service configuration from environment variables.
// Every problem found while loading is collected so that a misconfigured deployment
// reports all of its mistakes at once instead of one per restart.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabasePools holds configuration for the two PostgreSQL pools.
// AppPool serves HTTP requests; ImportPool is used by migrations and dataset imports.
type DatabasePools struct {
	AppPool    *PoolConfig
	ImportPool *PoolConfig
}

// PoolConfig represents configuration for a single database connection pool.
type PoolConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxSize  int
}

// OAuthProviderConfig holds the client credentials of one OAuth provider.
// A provider without a ClientID is disabled.
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
}

// Enabled reports whether the provider can be used for login.
func (p OAuthProviderConfig) Enabled() bool {
	return p.ClientID != "" && p.ClientSecret != ""
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	JWTSecret            string        // Secret key for signing JWTs
	AccessTokenDuration  time.Duration // Lifetime of access tokens and of the session cookie
	RefreshTokenDuration time.Duration // Lifetime of refresh tokens and of the session row
	SessionCookieName    string
	CookieSecure         bool
	Google               OAuthProviderConfig
	Discord              OAuthProviderConfig
	GitHub               OAuthProviderConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	BaseURL        string // public URL of this API, used for OAuth redirect URIs
	FrontendURL    string // where users land after login
	AllowedOrigins []string
	RateLimitRPS   int
	RateLimitBurst int
	MigrationsPath string
	AutoMigrate    bool
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// CacheConfig configures the data-platform result cache.
// When RedisURL is empty an in-process LRU of Size entries is used.
type CacheConfig struct {
	RedisURL string
	TTL      time.Duration
	Size     int
}

// StorageConfig configures recipe image uploads. An empty Bucket disables uploads.
type StorageConfig struct {
	Bucket         string
	Region         string
	PublicAssetURL string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	DBPools *DatabasePools
	Auth    *AuthConfig
	Server  *ServerConfig
	Log     *LogConfig
	Cache   *CacheConfig
	Storage *StorageConfig
}

func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return ""
	}
	return value
}

func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueInt
}

func getOptionalEnvBool(key string, defaultValue bool, errors *[]string) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	v, err := strconv.ParseBool(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected boolean, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return v
}

// `time.ParseDuration` expects a string like "15m", "1h30s".
func getOptionalEnvDuration(key string, defaultValue time.Duration, errors *[]string) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueDuration, err := time.ParseDuration(valueStr)
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected duration string, got '%s': %v", key, valueStr, err))
		return defaultValue
	}
	return valueDuration
}

// clampPoolSize keeps pool sizes between 5 and 100, recording a message when it has to clamp.
func clampPoolSize(size int, varName string, errors *[]string) int {
	if size < 5 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is less than minimum 5", varName, size))
		return 5
	}
	if size > 100 {
		*errors = append(*errors, fmt.Sprintf("pool size for %s (%d) is greater than maximum 100", varName, size))
		return 100
	}
	return size
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func loadProvider(prefix string) OAuthProviderConfig {
	return OAuthProviderConfig{
		ClientID:     getOptionalEnv(prefix+"_CLIENT_ID", ""),
		ClientSecret: getOptionalEnv(prefix+"_CLIENT_SECRET", ""),
	}
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	var errors []string

	// Database
	dbUser := getRequiredEnv("DB_USER", &errors)
	dbPassword := getRequiredEnv("DB_PASSWORD", &errors)
	dbName := getRequiredEnv("DB_NAME", &errors)
	dbHost := getOptionalEnv("DB_HOST", "localhost")
	dbPort := getOptionalEnvInt("DB_PORT", 5432, &errors)
	sslMode := getOptionalEnv("DB_SSLMODE", "disable")
	appPoolSize := clampPoolSize(getOptionalEnvInt("DB_APP_POOL_SIZE", 10, &errors), "DB_APP_POOL_SIZE", &errors)
	importPoolSize := clampPoolSize(getOptionalEnvInt("DB_IMPORT_POOL_SIZE", 5, &errors), "DB_IMPORT_POOL_SIZE", &errors)

	pool := func(size int) *PoolConfig {
		return &PoolConfig{
			Host:     dbHost,
			Port:     dbPort,
			User:     dbUser,
			Password: dbPassword,
			DBName:   dbName,
			SSLMode:  sslMode,
			MaxSize:  size,
		}
	}

	// Auth
	authConfig := &AuthConfig{
		JWTSecret:            getRequiredEnv("JWT_SECRET", &errors),
		AccessTokenDuration:  getOptionalEnvDuration("JWT_ACCESS_TOKEN_DURATION", 24*time.Hour, &errors),
		RefreshTokenDuration: getOptionalEnvDuration("JWT_REFRESH_TOKEN_DURATION", 30*24*time.Hour, &errors),
		SessionCookieName:    getOptionalEnv("SESSION_COOKIE_NAME", "session"),
		CookieSecure:         getOptionalEnvBool("COOKIE_SECURE", true, &errors),
		Google:               loadProvider("GOOGLE"),
		Discord:              loadProvider("DISCORD"),
		GitHub:               loadProvider("GITHUB"),
	}
	if authConfig.JWTSecret != "" && len(authConfig.JWTSecret) < 32 {
		errors = append(errors, "JWT_SECRET must be at least 32 characters")
	}
	if authConfig.AccessTokenDuration > authConfig.RefreshTokenDuration {
		errors = append(errors, "JWT_ACCESS_TOKEN_DURATION must not exceed JWT_REFRESH_TOKEN_DURATION")
	}

	// Server
	port := getOptionalEnv("PORT", "8080")
	serverConfig := &ServerConfig{
		Port:           port,
		BaseURL:        strings.TrimRight(getOptionalEnv("BASE_URL", "http://localhost:"+port), "/"),
		FrontendURL:    strings.TrimRight(getOptionalEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins: splitList(getOptionalEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitRPS:   getOptionalEnvInt("RATE_LIMIT_RPS", 20, &errors),
		RateLimitBurst: getOptionalEnvInt("RATE_LIMIT_BURST", 40, &errors),
		MigrationsPath: getOptionalEnv("MIGRATIONS_PATH", "./migrations"),
		AutoMigrate:    getOptionalEnvBool("AUTO_MIGRATE", false, &errors),
	}
	if serverConfig.RateLimitRPS <= 0 {
		errors = append(errors, "RATE_LIMIT_RPS must be positive")
	}

	// Logging
	logConfig := &LogConfig{
		Level:  strings.ToLower(getOptionalEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getOptionalEnv("LOG_FORMAT", "json")),
	}
	switch logConfig.Level {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid LOG_LEVEL '%s'", logConfig.Level))
	}
	if logConfig.Format != "json" && logConfig.Format != "console" {
		errors = append(errors, fmt.Sprintf("invalid LOG_FORMAT '%s'", logConfig.Format))
	}

	cacheConfig := &CacheConfig{
		RedisURL: getOptionalEnv("REDIS_URL", ""),
		TTL:      getOptionalEnvDuration("CACHE_TTL", 5*time.Minute, &errors),
		Size:     getOptionalEnvInt("CACHE_SIZE", 256, &errors),
	}

	storageConfig := &StorageConfig{
		Bucket:         getOptionalEnv("S3_BUCKET", ""),
		Region:         getOptionalEnv("S3_REGION", getOptionalEnv("AWS_REGION", "us-east-1")),
		PublicAssetURL: strings.TrimRight(getOptionalEnv("PUBLIC_ASSET_URL", ""), "/"),
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		DBPools: &DatabasePools{
			AppPool:    pool(appPoolSize),
			ImportPool: pool(importPoolSize),
		},
		Auth:    authConfig,
		Server:  serverConfig,
		Log:     logConfig,
		Cache:   cacheConfig,
		Storage: storageConfig,
	}, nil
}
