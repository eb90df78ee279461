package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envLogLevel              = "LOG_LEVEL"
	envGrantTableSource      = "GRANT_TABLE_SOURCE"
	envGrantTablePreset      = "GRANT_TABLE_PRESET"
	envGrantTableFile        = "GRANT_TABLE_FILE"
	envGrantTableS3Bucket    = "GRANT_TABLE_S3_BUCKET"
	envGrantTableS3Key       = "GRANT_TABLE_S3_KEY"
	envGrantTableReload      = "GRANT_TABLE_RELOAD_INTERVAL"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envAWSEndpoint           = "AWS_ENDPOINT"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envSubjectRoleSource     = "SUBJECT_ROLE_SOURCE"
	envServiceAPIKeyHashes   = "SERVICE_API_KEY_HASHES"
	envServiceAPIKeySalt     = "SERVICE_API_KEY_SALT"
	envRateLimitRPS          = "RATE_LIMIT_RPS"
	envRateLimitBurst        = "RATE_LIMIT_BURST"
	envRateLimitAuthRPS      = "RATE_LIMIT_AUTH_RPS"
	envRateLimitAuthBurst    = "RATE_LIMIT_AUTH_BURST"
	envCapabilityCacheTTL    = "CAPABILITY_CACHE_TTL"
	envEnablePprof           = "ENABLE_PPROF"
	envMaxQueryItems         = "MAX_QUERY_ITEMS"
)

// Grant table sources.
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceS3       = "s3"
)

// Subject role sources.
const (
	RoleSourceJWT      = "jwt"
	RoleSourcePostgres = "postgres"
)

const (
	defaultServerPort         = "8080"
	defaultServerReadTimeout  = 10 * time.Second
	defaultServerWriteTimeout = 10 * time.Second
	defaultServerShutdown     = 10 * time.Second
	defaultLogLevel           = "info"
	defaultGrantTablePreset   = "dangerous-goods"
	defaultGrantTableReload   = 0
	defaultDBHost             = "localhost"
	defaultDBPort             = 5432
	defaultDBName             = "authz"
	defaultDBUser             = "authz_app"
	defaultDBSSLMode          = "disable"
	defaultDBMaxConns         = 10
	defaultDBMinConns         = 2
	defaultJWTExpiry          = 60 * time.Minute
	defaultRateLimitRPS       = 50.0
	defaultRateLimitBurst     = 100
	defaultRateLimitAuthRPS   = 20.0
	defaultRateLimitAuthBurst = 40
	defaultCapabilityCacheTTL = 5 * time.Minute
	defaultMaxQueryItems      = 256
	minJWTSecretLength        = 32
	minUniqueCharsInSecret    = 16
	minRepeatedCharThreshold  = 4
	maxRepeatedChars          = 2
	minServiceKeySaltLength   = 16
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	GrantTable GrantTableConfig
	Database   DatabaseConfig
	AWS        AWSConfig
	JWT        JWTConfig
	Auth       AuthConfig
	RateLimit  RateLimitConfig
	App        AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type GrantTableConfig struct {
	Source   string
	Preset   string
	File     string
	S3Bucket string
	S3Key    string
	// ReloadInterval of zero disables periodic reloads.
	ReloadInterval time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type AuthConfig struct {
	SubjectRoleSource   string
	ServiceAPIKeyHashes []string
	ServiceAPIKeySalt   string
}

// RateLimitConfig holds two budgets. RPS/Burst apply per authenticated
// caller; AuthRPS/AuthBurst apply per client address before credentials are
// checked.
type RateLimitConfig struct {
	RPS       float64
	Burst     int
	AuthRPS   float64
	AuthBurst int
}

type AppConfig struct {
	CapabilityCacheTTL time.Duration
	MaxQueryItems      int
	EnablePprof        bool
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv(envLogLevel, defaultLogLevel)),
		},
		GrantTable: GrantTableConfig{
			Source:         strings.ToLower(getEnv(envGrantTableSource, SourceEmbedded)),
			Preset:         getEnv(envGrantTablePreset, defaultGrantTablePreset),
			File:           os.Getenv(envGrantTableFile),
			S3Bucket:       os.Getenv(envGrantTableS3Bucket),
			S3Key:          os.Getenv(envGrantTableS3Key),
			ReloadInterval: getDurationEnv(envGrantTableReload, defaultGrantTableReload),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
			Endpoint:        os.Getenv(envAWSEndpoint),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Auth: AuthConfig{
			SubjectRoleSource:   strings.ToLower(getEnv(envSubjectRoleSource, RoleSourceJWT)),
			ServiceAPIKeyHashes: getListEnv(envServiceAPIKeyHashes),
			ServiceAPIKeySalt:   os.Getenv(envServiceAPIKeySalt),
		},
		RateLimit: RateLimitConfig{
			RPS:       getFloatEnv(envRateLimitRPS, defaultRateLimitRPS),
			Burst:     getIntEnv(envRateLimitBurst, defaultRateLimitBurst),
			AuthRPS:   getFloatEnv(envRateLimitAuthRPS, defaultRateLimitAuthRPS),
			AuthBurst: getIntEnv(envRateLimitAuthBurst, defaultRateLimitAuthBurst),
		},
		App: AppConfig{
			CapabilityCacheTTL: getDurationEnv(envCapabilityCacheTTL, defaultCapabilityCacheTTL),
			MaxQueryItems:      getIntEnv(envMaxQueryItems, defaultMaxQueryItems),
			EnablePprof:        getBoolEnv(envEnablePprof, false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(err error) { result = multierror.Append(result, err) }

	if c.Server.Port == "" {
		add(errors.New(errPortRequired))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add(fmt.Errorf(errInvalidChoiceFmt, envLogLevel, c.Log.Level, "debug, info, warn, error"))
	}

	switch c.GrantTable.Source {
	case SourceEmbedded:
		if c.GrantTable.Preset == "" {
			add(errors.New(messages.requiredEnvNotSet(envGrantTablePreset)))
		}
	case SourceFile:
		if c.GrantTable.File == "" {
			add(errors.New(messages.requiredFor(envGrantTableFile, envGrantTableSource, SourceFile)))
		}
	case SourceS3:
		for _, kv := range [][2]string{
			{envGrantTableS3Bucket, c.GrantTable.S3Bucket},
			{envGrantTableS3Key, c.GrantTable.S3Key},
			{envAWSRegion, c.AWS.Region},
		} {
			if kv[1] == "" {
				add(errors.New(messages.requiredFor(kv[0], envGrantTableSource, SourceS3)))
			}
		}
		if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
			add(errors.New(errAWSKeyPairFmt))
		}
	default:
		add(fmt.Errorf(errInvalidChoiceFmt, envGrantTableSource, c.GrantTable.Source, "embedded, file, s3"))
	}

	if c.GrantTable.ReloadInterval < 0 {
		add(fmt.Errorf(errNegativeDurationFmt, envGrantTableReload))
	}

	switch c.Auth.SubjectRoleSource {
	case RoleSourceJWT:
	case RoleSourcePostgres:
		if c.Database.Password == "" {
			add(errors.New(messages.requiredFor(envDBPassword, envSubjectRoleSource, RoleSourcePostgres)))
		}
		if c.Database.MinConns > c.Database.MaxConns {
			add(errors.New(errDBConnBoundsFmt))
		}
	default:
		add(fmt.Errorf(errInvalidChoiceFmt, envSubjectRoleSource, c.Auth.SubjectRoleSource, "jwt, postgres"))
	}

	if c.JWT.Secret == "" {
		add(errors.New(messages.requiredEnvNotSet(envJWTSecret)))
	} else if len(c.JWT.Secret) < minJWTSecretLength {
		add(fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength))
	} else if !hasMinimumEntropy(c.JWT.Secret) {
		add(errors.New(errJWTSecretLowEntropy))
	}

	if len(c.Auth.ServiceAPIKeyHashes) > 0 && len(c.Auth.ServiceAPIKeySalt) < minServiceKeySaltLength {
		add(fmt.Errorf(errServiceKeySaltFmt, envServiceAPIKeySalt, minServiceKeySaltLength))
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		add(errors.New(errRateLimitFmt))
	}
	if c.RateLimit.AuthRPS <= 0 || c.RateLimit.AuthBurst <= 0 {
		add(errors.New(errAuthRateLimitMsg))
	}

	if c.App.MaxQueryItems <= 0 {
		add(fmt.Errorf(errPositiveIntFmt, envMaxQueryItems))
	}

	return result.ErrorOrNil()
}

// ServiceKeysEnabled reports whether the /v1 API is protected by service
// API keys.
func (c *Config) ServiceKeysEnabled() bool {
	return len(c.Auth.ServiceAPIKeyHashes) > 0
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	uniqueChars := len(charCounts)
	if uniqueChars < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma separated value, dropping blanks.
func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
