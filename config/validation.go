package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Validate validates the configuration
func Validate(cfg Config) error {
	if err := validateApp(cfg.App()); err != nil {
		return fmt.Errorf("app config validation failed: %w", err)
	}

	if err := validateServer(cfg.Server()); err != nil {
		return fmt.Errorf("server config validation failed: %w", err)
	}

	if err := validateDatabase(cfg.Database()); err != nil {
		return fmt.Errorf("database config validation failed: %w", err)
	}

	if err := validateRedis(cfg.Redis()); err != nil {
		return fmt.Errorf("redis config validation failed: %w", err)
	}

	if err := validateCache(cfg.Cache()); err != nil {
		return fmt.Errorf("cache config validation failed: %w", err)
	}

	if err := validateLogger(cfg.Logger()); err != nil {
		return fmt.Errorf("logger config validation failed: %w", err)
	}

	if err := validateUpload(cfg.Upload()); err != nil {
		return fmt.Errorf("upload config validation failed: %w", err)
	}

	if err := validateEmail(cfg.Email()); err != nil {
		return fmt.Errorf("email config validation failed: %w", err)
	}
	return nil
}

func validateApp(cfg AppConfig) error {
	if cfg.Environment() == "" {
		return fmt.Errorf("environment variable is required, please set ENV env variable")
	}

	switch cfg.Environment() {
	case LocalEnv, DevelopmentEnv, ProductionEnv:
	default:
		return fmt.Errorf("ENV=%s is invalid, only accept `%s`, `%s`, `%s`", cfg.Environment(), LocalEnv, DevelopmentEnv, ProductionEnv)
	}

	if cfg.TokenIssuer() == "" {
		return fmt.Errorf("token_issuer is required")
	}

	if cfg.AccessTokenExpiresIn() <= 0 {
		return fmt.Errorf("access_token_expires_in must be positive")
	}

	if cfg.RefreshTokenExpiresIn() <= 0 {
		return fmt.Errorf("refresh_token_expires_in must be positive")
	}

	// Validate JWT access token is shorter than refresh token
	if cfg.AccessTokenExpiresIn() >= cfg.RefreshTokenExpiresIn() {
		return fmt.Errorf("access_token_expires_in must be less than refresh_token_expires_in")
	}

	if cfg.AccessTokenSecret() == "" {
		return fmt.Errorf("access token secret is required, please set ACCESS_TOKEN_SECRET env variable")
	}

	if cfg.RefreshTokenSecret() == "" {
		return fmt.Errorf("refresh token secret is required, please set REFRESH_TOKEN_SECRET env variable")
	}

	if cfg.SuperadminDefaultEmail() == "" {
		return fmt.Errorf("superadmin default email is required, please set SUPERADMIN_DEFAULT_EMAIL env variable")
	}

	if cfg.SuperadminDefaultPassword() == "" {
		return fmt.Errorf("superadmin default password is required, please set SUPERADMIN_DEFAULT_PASSWORD env variable")
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Host() == "" {
		return fmt.Errorf("host is required")
	}

	// Validate host format
	if cfg.Host() != "0.0.0.0" && cfg.Host() != "localhost" {
		if net.ParseIP(cfg.Host()) == nil {
			return fmt.Errorf("host must be a valid IP address or 'localhost'")
		}
	}

	if cfg.Port() <= 0 || cfg.Port() > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}

	if cfg.ReadTimeout() <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if cfg.WriteTimeout() <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	// Validate domain format
	if cfg.Domain() != "" && !strings.HasPrefix(cfg.Domain(), "http") {
		return fmt.Errorf("domain must start with http:// or https://")
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Host() == "" {
		return fmt.Errorf("database host is required")
	}

	if cfg.Port() == "" {
		return fmt.Errorf("database port is required")
	}

	// Validate port is numeric
	if port, err := strconv.Atoi(cfg.Port()); err != nil {
		return fmt.Errorf("database port must be numeric: %w", err)
	} else if port <= 0 || port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535")
	}

	if cfg.User() == "" {
		return fmt.Errorf("database user is required")
	}

	if cfg.Password() == "" {
		return fmt.Errorf("database password is required")
	}

	if cfg.Name() == "" {
		return fmt.Errorf("database name is required")
	}

	if cfg.MaxOpenConns() <= 0 {
		return fmt.Errorf("max_open_conns must be positive")
	}

	if cfg.MaxIdleConns() <= 0 {
		return fmt.Errorf("max_idle_conns must be positive")
	}

	if cfg.MaxIdleConns() > cfg.MaxOpenConns() {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}

	if cfg.ConnMaxLifetime() <= 0 {
		return fmt.Errorf("conn_max_lifetime must be positive")
	}

	if !oneOf(cfg.SSLMode(), "disable", "require", "verify-ca", "verify-full") {
		return fmt.Errorf("ssl_mode must be one of: disable, require, verify-ca, verify-full")
	}

	if cfg.EnableLog() && !oneOf(cfg.LogLevel(), "silent", "error", "warn", "info") {
		return fmt.Errorf("database log_level must be one of: silent, error, warn, info")
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host() == "" {
		return fmt.Errorf("redis host is required")
	}

	if cfg.Port() <= 0 || cfg.Port() > 65535 {
		return fmt.Errorf("redis port must be between 1 and 65535")
	}

	if cfg.DB() < 0 || cfg.DB() > 15 {
		return fmt.Errorf("redis db must be between 0 and 15")
	}

	return nil
}

func validateCache(cfg CacheConfig) error {
	if !oneOf(cfg.Provider(), "redis", "memory") {
		return fmt.Errorf("cache provider must be 'redis' or 'memory'")
	}

	if cfg.DefaultTTL() <= 0 {
		return fmt.Errorf("default_ttl must be positive")
	}

	return nil
}

func validateLogger(cfg LoggerConfig) error {
	if cfg.LogFilePath() == "" {
		return fmt.Errorf("log_file_path is required")
	}

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(cfg.LogFilePath(), 0755); err != nil {
		return fmt.Errorf("cannot create log directory: %w", err)
	}

	if cfg.LogFileName() == "" {
		return fmt.Errorf("log_file_name is required")
	}

	if !oneOf(cfg.LogLevel(), "debug", "info", "warn", "error", "fatal", "panic") {
		return fmt.Errorf("log_level must be one of: debug, info, warn, error, fatal, panic")
	}

	if cfg.MaxFileSizeMB() <= 0 {
		return fmt.Errorf("max_file_size_mb must be positive")
	}

	if cfg.MaxFileAgeDays() <= 0 {
		return fmt.Errorf("max_file_age_days must be positive")
	}

	if cfg.MaxBackupFiles() <= 0 {
		return fmt.Errorf("max_backup_files must be positive")
	}

	// Validate timestamp format by trying to format current time
	if cfg.TimestampFormat() != "" {
		testTime := time.Now()
		if testTime.Format(cfg.TimestampFormat()) == cfg.TimestampFormat() {
			return fmt.Errorf("invalid timestamp_format: %s", cfg.TimestampFormat())
		}
	}

	return nil
}


func validateUpload(cfg UploadConfig) error {
	provider := cfg.Provider()
	if provider != "s3" && provider != "local" {
		return fmt.Errorf("upload provider must be 's3' or 'local'")
	}

	if provider == "local" {
		if cfg.LocalDir() == "" {
			return fmt.Errorf("local_dir is required when provider is 'local'")
		}

		// Check if directory exists or can be created
		if err := os.MkdirAll(cfg.LocalDir(), 0755); err != nil {
			return fmt.Errorf("cannot create local upload directory: %w", err)
		}
	}

	if provider == "s3" {
		if cfg.S3BucketName() == "" {
			return fmt.Errorf("s3_bucket_name is required when provider is 's3'")
		}
		if cfg.S3Region() == "" {
			return fmt.Errorf("s3_region is required when provider is 's3'")
		}
		if cfg.S3AccessKey() == "" {
			return fmt.Errorf("s3 access key id is required when provider is 's3'")
		}
		if cfg.S3SecretKey() == "" {
			return fmt.Errorf("s3 secret access key is required when provider is 's3'")
		}
		if cfg.S3PresignURLTTL() <= 0 {
			return fmt.Errorf("s3 presign_url_ttl must be positive")
		}
		if cfg.S3EndpointURL() != "" && !strings.HasPrefix(cfg.S3EndpointURL(), "http") {
			return fmt.Errorf("s3 endpoint_url must start with http:// or https://")
		}
	}

	return nil
}

func validateEmail(cfg EmailConfig) error {
	provider := cfg.Provider()
	if !oneOf(provider, "ses", "sendgrid", "mock") {
		return fmt.Errorf("email provider must be one of: ses, sendgrid, mock")
	}

	if cfg.From() == "" {
		return fmt.Errorf("email from address is required")
	}

	if provider == "sendgrid" && cfg.SendGridAPIKey() == "" {
		return fmt.Errorf("sendgrid api key is required, please set SENDGRID_API_KEY env variable")
	}

	if provider == "ses" {
		if cfg.SESRegion() == "" {
			return fmt.Errorf("ses_region is required when provider is 'ses'")
		}
		if cfg.SESAccessKey() == "" || cfg.SESSecretKey() == "" {
			return fmt.Errorf("ses credentials are required, please set EMAIL_SES_ACCESS_KEY and EMAIL_SES_SECRET_KEY env variables")
		}
	}

	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}
