package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/straye-as/salesops-api/internal/secrets"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App             AppConfig
	Database        DatabaseConfig
	ProductDatabase ProductDatabaseConfig
	Catalog         CatalogConfig
	Redis           RedisConfig
	Auth            AuthConfig
	Storage         StorageConfig
	Secrets         SecretsConfig
	Logging         LoggingConfig
	Server          ServerConfig
	CORS            CORSConfig
	Security        SecurityConfig
	RateLimit       RateLimitConfig
	Document        DocumentConfig
	Export          ExportConfig
	Jobs            JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// PublicBaseURL prefixes download links handed to clients
	PublicBaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// ProductDatabaseConfig holds configuration for the MS SQL Server product database.
// The connection is optional and read-only.
type ProductDatabaseConfig struct {
	Enabled bool
	// URL is host:port/database
	URL             string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// QueryTimeout in seconds
	QueryTimeout int
	// SearchLimit caps the rows returned per search
	SearchLimit int
}

// CatalogConfig configures the HTTP product catalog
type CatalogConfig struct {
	Enabled bool
	BaseURL string
	// Timeout in seconds
	Timeout int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// KeyPrefix namespaces every key written by the service
	KeyPrefix string
}

// AuthConfig configures bearer token validation and the service API key
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	APIKey    string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	// "auto" uses environment in development, vault in staging/production
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
	// File enables a rotated log file next to stdout when set
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
	EnableMetrics  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	// MaxAge is the max age (in seconds) for preflight cache
	MaxAge int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	// FrameOptions sets the X-Frame-Options header (DENY, SAMEORIGIN, or empty to disable)
	FrameOptions       string
	ContentTypeNosniff bool
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	// RenderRequestsPerMinute limits document rendering and exports per user
	RenderRequestsPerMinute int
	WhitelistIPs            []string
	WhitelistPaths          []string
}

// DocumentConfig controls quotation document layout and rendering
type DocumentConfig struct {
	// PageSize is "letter" or "legal"
	PageSize string
	// Margins in millimetres
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	FooterHeight float64
	// Renderer is "native" (maroto) or "gotenberg"
	Renderer      string
	GotenbergURL  string
	RenderTimeout int // seconds
}

// ExportConfig controls temporary download links
type ExportConfig struct {
	// LinkTTL in seconds
	LinkTTL int
}

// JobsConfig holds background job schedules (cron with seconds)
type JobsConfig struct {
	Enabled            bool
	ExportCleanupCron  string
	ExportCleanupBatch int64
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *ProductDatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (d *ProductDatabaseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(d.QueryTimeout) * time.Second
}

// TimeoutDuration returns the catalog request timeout
func (c *CatalogConfig) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// RenderTimeoutDuration returns the Gotenberg request timeout
func (d *DocumentConfig) RenderTimeoutDuration() time.Duration {
	return time.Duration(d.RenderTimeout) * time.Second
}

// Namespace returns KeyPrefix with a trailing ":" separator, or "" when unset
func (r *RedisConfig) Namespace() string {
	if r.KeyPrefix == "" || strings.HasSuffix(r.KeyPrefix, ":") {
		return r.KeyPrefix
	}
	return r.KeyPrefix + ":"
}

// LinkTTLDuration returns how long a download link stays valid
func (e *ExportConfig) LinkTTLDuration() time.Duration {
	return time.Duration(e.LinkTTL) * time.Second
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.APIKey == "" {
		cfg.Auth.APIKey = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("PRODUCTDATABASE_ENABLED") {
		cfg.ProductDatabase.Enabled = true
	}

	return &cfg, nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Document.PageSize {
	case "letter", "legal":
	default:
		return fmt.Errorf("document.pageSize must be letter or legal, got %q", c.Document.PageSize)
	}
	switch c.Document.Renderer {
	case "native", "gotenberg":
	default:
		return fmt.Errorf("document.renderer must be native or gotenberg, got %q", c.Document.Renderer)
	}
	if c.Document.Renderer == "gotenberg" && c.Document.GotenbergURL == "" {
		return fmt.Errorf("document.gotenbergUrl is required when document.renderer is gotenberg")
	}
	switch c.Storage.Mode {
	case "local", "cloud", "azure":
	default:
		return fmt.Errorf("storage.mode must be local, cloud or azure, got %q", c.Storage.Mode)
	}
	if c.Export.LinkTTL <= 0 {
		return fmt.Errorf("export.linkTTL must be positive")
	}
	return nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
//
// Key Vault is used when BOTH conditions are met:
// 1. USE_AZURE_KEY_VAULT environment variable is set to "true"
// 2. Environment is "staging" or "production"
//
// Product database credentials are always loaded from Key Vault when
// PRODUCTDATABASE_ENABLED=true and AZURE_KEY_VAULT_NAME is configured.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.ProductDatabase.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadProductDatabaseSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load product database secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
			// Product search falls back to the HTTP catalog
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for main secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	logger.Info("Azure Key Vault enabled for secrets",
		zap.String("environment", cfg.App.Environment),
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	if !provider.IsVaultEnabled() {
		return nil, fmt.Errorf("vault provider not enabled despite USE_AZURE_KEY_VAULT=true")
	}

	applySecrets(ctx, cfg, provider)

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// secretSource is the subset of the secrets provider used to fill the config
type secretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envVar string) (string, error)
}

func applySecrets(ctx context.Context, cfg *Config, provider secretSource) {
	set := func(dst *string, secretName, envVar string) {
		if value, err := provider.GetSecretOrEnv(ctx, secretName, envVar); err == nil && value != "" {
			*dst = value
		}
	}

	set(&cfg.Database.Host, "POSTGRES-MAIN-HOST", "DATABASE_HOST")
	set(&cfg.Database.User, "POSTGRES-MAIN-USER", "DATABASE_USER")
	set(&cfg.Database.Password, "POSTGRES-MAIN-PASSWORD", "DATABASE_PASSWORD")
	if defaultDB := os.Getenv("DEFAULT_DATABASE"); defaultDB != "" {
		cfg.Database.Name = defaultDB
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	set(&cfg.Auth.JWTSecret, "jwt-secret", "JWT_SECRET")
	set(&cfg.Auth.APIKey, "admin-api-key", "ADMIN_API_KEY")
	set(&cfg.Redis.Password, "redis-password", "REDIS_PASSWORD")
	set(&cfg.Storage.CloudConnectionString, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
}

// loadProductDatabaseSecrets loads product database credentials from Azure Key Vault only
func loadProductDatabaseSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	logger.Info("Loading product database secrets from Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for product database: %w", err)
	}

	url, err := provider.GetSecret(ctx, "PRODUCTDB-URL")
	if err != nil {
		return fmt.Errorf("failed to get PRODUCTDB-URL from Key Vault: %w", err)
	}
	cfg.ProductDatabase.URL = url

	user, err := provider.GetSecret(ctx, "PRODUCTDB-USERNAME")
	if err != nil {
		return fmt.Errorf("failed to get PRODUCTDB-USERNAME from Key Vault: %w", err)
	}
	cfg.ProductDatabase.User = user

	password, err := provider.GetSecret(ctx, "PRODUCTDB-PASSWORD")
	if err != nil {
		return fmt.Errorf("failed to get PRODUCTDB-PASSWORD from Key Vault: %w", err)
	}
	cfg.ProductDatabase.Password = password

	logger.Info("Product database credentials loaded from Key Vault successfully")
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Sales Ops API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.publicBaseURL", "http://localhost:8080")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "salesops")
	v.SetDefault("database.user", "salesops_user")
	v.SetDefault("database.password", "salesops_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	// Product database defaults (MS SQL Server - optional, read-only)
	v.SetDefault("productDatabase.enabled", false)
	v.SetDefault("productDatabase.maxOpenConns", 10)
	v.SetDefault("productDatabase.maxIdleConns", 2)
	v.SetDefault("productDatabase.connMaxLifetime", 300)
	v.SetDefault("productDatabase.queryTimeout", 15)
	v.SetDefault("productDatabase.searchLimit", 50)

	// Catalog defaults
	v.SetDefault("catalog.enabled", true)
	v.SetDefault("catalog.baseURL", "http://localhost:4000/api")
	v.SetDefault("catalog.timeout", 10)

	// Redis defaults
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.keyPrefix", "salesops")

	// Auth defaults
	v.SetDefault("auth.issuer", "salesops")

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300) // 5 minutes

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "quotation-exports")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.maxSizeMB", 100)
	v.SetDefault("logging.maxBackups", 5)
	v.SetDefault("logging.maxAgeDays", 28)

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 60)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)
	v.SetDefault("server.enableMetrics", true)

	// CORS defaults - restrictive by default
	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID", "X-Territory-Code"})
	v.SetDefault("cors.exposedHeaders", []string{"Content-Disposition", "Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults - secure by default
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000) // 1 year
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.renderRequestsPerMinute", 20)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/metrics"})

	// Document defaults
	v.SetDefault("document.pageSize", "letter")
	v.SetDefault("document.marginTop", 10)
	v.SetDefault("document.marginBottom", 10)
	v.SetDefault("document.marginLeft", 10)
	v.SetDefault("document.marginRight", 10)
	v.SetDefault("document.footerHeight", 12)
	v.SetDefault("document.renderer", "native")
	v.SetDefault("document.gotenbergURL", "http://localhost:3000")
	v.SetDefault("document.renderTimeout", 30)

	// Export defaults
	v.SetDefault("export.linkTTL", 300)

	// Job defaults
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.exportCleanupCron", "0 */5 * * * *")
	v.SetDefault("jobs.exportCleanupBatch", 100)
}
