package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App            AppConfig
	MasterDatabase DatabaseConfig
	TenantPool     TenantPoolConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Log            LogConfig
	HTTP           HTTPConfig
	FBR            FBRConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds master database connection settings. Tenant databases
// share host and credentials with the master; only the database name varies.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
}

// TenantPoolConfig bounds each per-tenant connection pool
type TenantPoolConfig struct {
	MaxOpenConns   int
	MaxIdleConns   int
	ConnMaxIdle    time.Duration // idle eviction
	AcquireTimeout time.Duration // per-operation deadline while waiting for a connection
}

// RedisConfig holds Redis connection settings for the tenant directory cache
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTL      time.Duration
}

// JWTConfig holds settings for admin tokens
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// FBRConfig holds tax-authority submission settings
type FBRConfig struct {
	SandboxURL    string
	ProductionURL string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with INVOICEHUB_ prefix (e.g. INVOICEHUB_MASTER_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("INVOICEHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		MasterDatabase: DatabaseConfig{
			Host:            v.GetString("master_database.host"),
			Port:            v.GetInt("master_database.port"),
			User:            v.GetString("master_database.user"),
			Password:        v.GetString("master_database.password"),
			DBName:          v.GetString("master_database.dbname"),
			SSLMode:         v.GetString("master_database.sslmode"),
			MaxOpenConns:    v.GetInt("master_database.max_open_conns"),
			MaxIdleConns:    v.GetInt("master_database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("master_database.conn_max_lifetime"),
		},
		TenantPool: TenantPoolConfig{
			MaxOpenConns:   v.GetInt("tenant_pool.max_open_conns"),
			MaxIdleConns:   v.GetInt("tenant_pool.max_idle_conns"),
			ConnMaxIdle:    v.GetDuration("tenant_pool.conn_max_idle"),
			AcquireTimeout: v.GetDuration("tenant_pool.acquire_timeout"),
		},
		Redis: RedisConfig{
			Enabled:  v.GetBool("redis.enabled"),
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			TTL:      v.GetDuration("redis.ttl"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
		},
		FBR: FBRConfig{
			SandboxURL:    v.GetString("fbr.sandbox_url"),
			ProductionURL: v.GetString("fbr.production_url"),
			Timeout:       v.GetDuration("fbr.timeout"),
			RetryAttempts: v.GetUint("fbr.retry_attempts"),
			RetryDelay:    v.GetDuration("fbr.retry_delay"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "invoicehub-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.MasterDatabase.Host == "" {
		cfg.MasterDatabase.Host = "localhost"
	}
	if cfg.MasterDatabase.Port == 0 {
		cfg.MasterDatabase.Port = 5432
	}
	if cfg.MasterDatabase.User == "" {
		cfg.MasterDatabase.User = "postgres"
	}
	if cfg.MasterDatabase.DBName == "" {
		cfg.MasterDatabase.DBName = "invoicehub"
	}
	if cfg.MasterDatabase.SSLMode == "" {
		cfg.MasterDatabase.SSLMode = "disable"
	}
	if cfg.MasterDatabase.MaxOpenConns == 0 {
		cfg.MasterDatabase.MaxOpenConns = 25
	}
	if cfg.MasterDatabase.MaxIdleConns == 0 {
		cfg.MasterDatabase.MaxIdleConns = 5
	}
	if cfg.MasterDatabase.ConnMaxLifetime == 0 {
		cfg.MasterDatabase.ConnMaxLifetime = 60
	}
	if cfg.TenantPool.MaxOpenConns == 0 {
		cfg.TenantPool.MaxOpenConns = 5
	}
	if cfg.TenantPool.MaxIdleConns == 0 {
		cfg.TenantPool.MaxIdleConns = 2
	}
	if cfg.TenantPool.ConnMaxIdle == 0 {
		cfg.TenantPool.ConnMaxIdle = 10 * time.Second
	}
	if cfg.TenantPool.AcquireTimeout == 0 {
		cfg.TenantPool.AcquireTimeout = 30 * time.Second
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 30 * time.Second
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 12 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "invoicehub-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.FBR.SandboxURL == "" {
		cfg.FBR.SandboxURL = "https://gw.fbr.gov.pk/di_data/v1/di/postinvoicedata_sb"
	}
	if cfg.FBR.ProductionURL == "" {
		cfg.FBR.ProductionURL = "https://gw.fbr.gov.pk/di_data/v1/di/postinvoicedata"
	}
	if cfg.FBR.Timeout == 0 {
		cfg.FBR.Timeout = 30 * time.Second
	}
	if cfg.FBR.RetryAttempts == 0 {
		cfg.FBR.RetryAttempts = 3
	}
	if cfg.FBR.RetryDelay == 0 {
		cfg.FBR.RetryDelay = 2 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.MasterDatabase.MaxOpenConns <= 0 {
		return fmt.Errorf("master_database.max_open_conns must be positive")
	}
	if c.MasterDatabase.MaxIdleConns > c.MasterDatabase.MaxOpenConns {
		return fmt.Errorf("master_database.max_idle_conns (%d) cannot exceed master_database.max_open_conns (%d)",
			c.MasterDatabase.MaxIdleConns, c.MasterDatabase.MaxOpenConns)
	}
	if c.TenantPool.MaxOpenConns <= 0 {
		return fmt.Errorf("tenant_pool.max_open_conns must be positive")
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.MasterDatabase.Password == "" {
			return fmt.Errorf("master_database.password is required in production")
		}
		if c.MasterDatabase.SSLMode == "disable" {
			return fmt.Errorf("master_database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the master database connection string with escaped values
func (d *DatabaseConfig) DSN() string {
	return d.DSNFor(d.DBName)
}

// DSNFor returns a connection string for a specific database on the same
// server; used for per-tenant databases.
func (d *DatabaseConfig) DSNFor(dbname string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   dbname,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
