package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Provisioning ProvisioningConfig
	Membership   MembershipConfig
	Billing      BillingConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters for service callers.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	ClientID              string
	ClientSecretHash      string
	BcryptCost            int
}

// ProvisioningConfig points at the external identity provisioning endpoint.
type ProvisioningConfig struct {
	BaseURL         string
	TimeoutSeconds  int
	DefaultISO      string
	DefaultPassword string
}

// OccupancyPolicy decides what happens when a join targets a post already
// held by a different staff member.
type OccupancyPolicy string

const (
	// OccupancyReassign silently transfers the post (last writer wins).
	OccupancyReassign OccupancyPolicy = "reassign"
	// OccupancyReject refuses the join with a conflict.
	OccupancyReject OccupancyPolicy = "reject"
)

// MembershipConfig tunes the join/leave workflow.
type MembershipConfig struct {
	OccupancyPolicy OccupancyPolicy
	RosterCacheTTL  time.Duration
}

// NotificationConfig controls membership event notification fan-out.
type NotificationConfig struct {
	WebhookURL string
}

// BillingConfig drives the billing order reconciliation worker.
type BillingConfig struct {
	GatewayURL          string
	SyncIntervalSeconds int
	Enabled             bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	occupancy := OccupancyPolicy(getEnv("MEMBERSHIP_OCCUPANCY_POLICY", string(OccupancyReassign)))
	if occupancy != OccupancyReassign && occupancy != OccupancyReject {
		return nil, fmt.Errorf("invalid MEMBERSHIP_OCCUPANCY_POLICY: %s", occupancy)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "org-staff-service"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			ClientID:              getEnv("AUTH_CLIENT_ID", "org-admin"),
			ClientSecretHash:      os.Getenv("AUTH_CLIENT_SECRET_HASH"),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Provisioning: ProvisioningConfig{
			BaseURL:         getEnv("PROVISIONING_BASE_URL", "http://127.0.0.1:9100"),
			TimeoutSeconds:  getEnvAsInt("PROVISIONING_TIMEOUT_SECONDS", 10),
			DefaultISO:      getEnv("PROVISIONING_DEFAULT_ISO", "CN"),
			DefaultPassword: getEnv("PROVISIONING_DEFAULT_PASSWORD", "okstar.123#"),
		},
		Membership: MembershipConfig{
			OccupancyPolicy: occupancy,
			RosterCacheTTL:  time.Duration(getEnvAsInt("MEMBERSHIP_ROSTER_CACHE_TTL_SECONDS", 60)) * time.Second,
		},
		Billing: BillingConfig{
			GatewayURL:          getEnv("BILLING_GATEWAY_URL", ""),
			SyncIntervalSeconds: getEnvAsInt("BILLING_SYNC_INTERVAL_SECONDS", 60),
			Enabled:             getEnvAsBool("BILLING_SYNC_ENABLED", false),
		},
		Notification: NotificationConfig{
			WebhookURL: os.Getenv("NOTIFICATION_WEBHOOK_URL"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the provisioning call deadline.
func (p ProvisioningConfig) Timeout() time.Duration {
	if p.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// SyncInterval returns the reconciliation cadence.
func (b BillingConfig) SyncInterval() time.Duration {
	if b.SyncIntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(b.SyncIntervalSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
