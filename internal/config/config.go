package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Oracle OracleConfig
	Upload UploadConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for document storage.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// UploadConfig constrains incoming documents.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// OracleProviderConfig holds settings for a single LLM oracle provider.
type OracleProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// OracleConfig holds semantic oracle settings with primary and secondary
// providers. When neither is configured the service runs heuristic-only.
type OracleConfig struct {
	Primary   OracleProviderConfig `mapstructure:"primary"`
	Secondary OracleProviderConfig `mapstructure:"secondary"`
}

// PrimaryConfig returns the primary oracle provider config, or nil when not
// configured.
func (o *OracleConfig) PrimaryConfig() *OracleProviderConfig {
	if o.Primary.Provider != "" {
		return &o.Primary
	}
	return nil
}

// SecondaryConfig returns the secondary oracle provider config, or nil when
// not configured.
func (o *OracleConfig) SecondaryConfig() *OracleProviderConfig {
	if o.Secondary.Provider != "" {
		return &o.Secondary
	}
	return nil
}

// Load reads configuration from environment variables with the DOCFILL_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCFILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "docfill")
	v.SetDefault("db.password", "docfill_secret")
	v.SetDefault("db.name", "docfill_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docfill-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 50)

	// Oracle defaults
	v.SetDefault("oracle.primary.provider", "")
	v.SetDefault("oracle.primary.api_key", "")
	v.SetDefault("oracle.primary.default_model", "")
	v.SetDefault("oracle.primary.timeout_secs", 60)
	v.SetDefault("oracle.secondary.provider", "")
	v.SetDefault("oracle.secondary.api_key", "")
	v.SetDefault("oracle.secondary.default_model", "")
	v.SetDefault("oracle.secondary.timeout_secs", 60)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":          "DOCFILL_SERVER_PORT",
		"server.read_timeout":  "DOCFILL_SERVER_READ_TIMEOUT",
		"server.write_timeout": "DOCFILL_SERVER_WRITE_TIMEOUT",
		"server.environment":   "DOCFILL_SERVER_ENVIRONMENT",
		"db.host":              "DOCFILL_DB_HOST",
		"db.port":              "DOCFILL_DB_PORT",
		"db.user":              "DOCFILL_DB_USER",
		"db.password":          "DOCFILL_DB_PASSWORD",
		"db.name":              "DOCFILL_DB_NAME",
		"db.sslmode":           "DOCFILL_DB_SSLMODE",
		"db.max_open":          "DOCFILL_DB_MAX_OPEN",
		"db.max_idle":          "DOCFILL_DB_MAX_IDLE",
		"s3.region":            "DOCFILL_S3_REGION",
		"s3.bucket":            "DOCFILL_S3_BUCKET",
		"s3.endpoint":          "DOCFILL_S3_ENDPOINT",
		"s3.access_key":        "DOCFILL_S3_ACCESS_KEY",
		"s3.secret_key":        "DOCFILL_S3_SECRET_KEY",
		"s3.presign_expiry":    "DOCFILL_S3_PRESIGN_EXPIRY",
		"log.level":            "DOCFILL_LOG_LEVEL",
		"log.format":           "DOCFILL_LOG_FORMAT",
		"cors.allowed_origins": "DOCFILL_CORS_ALLOWED_ORIGINS",
		"upload.max_file_size_mb":        "DOCFILL_UPLOAD_MAX_FILE_SIZE_MB",
		"oracle.primary.provider":        "DOCFILL_ORACLE_PRIMARY_PROVIDER",
		"oracle.primary.api_key":         "DOCFILL_ORACLE_PRIMARY_API_KEY",
		"oracle.primary.default_model":   "DOCFILL_ORACLE_PRIMARY_DEFAULT_MODEL",
		"oracle.primary.timeout_secs":    "DOCFILL_ORACLE_PRIMARY_TIMEOUT_SECS",
		"oracle.secondary.provider":      "DOCFILL_ORACLE_SECONDARY_PROVIDER",
		"oracle.secondary.api_key":       "DOCFILL_ORACLE_SECONDARY_API_KEY",
		"oracle.secondary.default_model": "DOCFILL_ORACLE_SECONDARY_DEFAULT_MODEL",
		"oracle.secondary.timeout_secs":  "DOCFILL_ORACLE_SECONDARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCFILL_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCFILL_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}

	cfg.Oracle = OracleConfig{
		Primary: OracleProviderConfig{
			Provider:     v.GetString("oracle.primary.provider"),
			APIKey:       v.GetString("oracle.primary.api_key"),
			DefaultModel: v.GetString("oracle.primary.default_model"),
			TimeoutSecs:  v.GetInt("oracle.primary.timeout_secs"),
		},
		Secondary: OracleProviderConfig{
			Provider:     v.GetString("oracle.secondary.provider"),
			APIKey:       v.GetString("oracle.secondary.api_key"),
			DefaultModel: v.GetString("oracle.secondary.default_model"),
			TimeoutSecs:  v.GetInt("oracle.secondary.timeout_secs"),
		},
	}

	return cfg, nil
}
