package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	MultiDB   MultiDBConfig   `mapstructure:"multi_db"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Mail      MailConfig      `mapstructure:"mail"`
	Lark      LarkConfig      `mapstructure:"lark"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig holds tenant database configuration.
// Each tenant database lives at <dir>/<name>.db.
type DatabaseConfig struct {
	Dir             string        `mapstructure:"dir"`
	DefaultName     string        `mapstructure:"default_name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// MultiDBConfig toggles multi-tenant database selection
type MultiDBConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Databases []string `mapstructure:"databases"`
}

// SchedulerConfig holds cron schedules for background jobs
type SchedulerConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	Timezone          string `mapstructure:"timezone"`
	QuoteCheckExpired string `mapstructure:"quote_check_expired"`
}

// MailConfig holds the mail task queue configuration
type MailConfig struct {
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
	SenderName   string        `mapstructure:"sender_name"`
}

// LarkConfig holds Lark API credentials used for mail delivery
type LarkConfig struct {
	AppID      string        `mapstructure:"app_id"`
	AppSecret  string        `mapstructure:"app_secret"`
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// PaymentConfig holds bank-account tokenization settings
type PaymentConfig struct {
	TokenizeURL        string        `mapstructure:"tokenize_url"`
	AuthorizationToken string        `mapstructure:"authorization_token"`
	MerchantName       string        `mapstructure:"merchant_name"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file, an optional .env file and environment variables
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BILLING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv loads path into the process environment when it exists.
// Variables already set in the environment win.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(path)
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("database.dir", "data")
	v.SetDefault("database.default_name", "db-ninja-01")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("multi_db.enabled", false)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.quote_check_expired", "0 5 * * *")

	v.SetDefault("mail.workers", 4)
	v.SetDefault("mail.queue_size", 256)
	v.SetDefault("mail.max_attempts", 3)
	v.SetDefault("mail.retry_backoff", 10*time.Second)
	v.SetDefault("mail.send_timeout", 30*time.Second)
	v.SetDefault("mail.sender_name", "Invoicing")

	v.SetDefault("lark.api_timeout", 30*time.Second)

	v.SetDefault("payment.timeout", 30*time.Second)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds credentials to their conventional variable names
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("lark.app_id", "LARK_APP_ID")
	_ = v.BindEnv("lark.app_secret", "LARK_APP_SECRET")
	_ = v.BindEnv("payment.authorization_token", "PAYMENT_AUTHORIZATION_TOKEN")
	_ = v.BindEnv("payment.tokenize_url", "PAYMENT_TOKENIZE_URL")
	_ = v.BindEnv("multi_db.enabled", "MULTI_DB_ENABLED")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Dir == "" {
		return fmt.Errorf("database.dir is required")
	}
	if c.Database.DefaultName == "" {
		return fmt.Errorf("database.default_name is required")
	}

	if c.MultiDB.Enabled {
		if len(c.MultiDB.Databases) == 0 {
			return fmt.Errorf("multi_db.databases is required when multi_db.enabled is set")
		}
		seen := make(map[string]bool, len(c.MultiDB.Databases))
		for _, name := range c.MultiDB.Databases {
			if seen[name] {
				return fmt.Errorf("multi_db.databases contains %q twice", name)
			}
			seen[name] = true
		}
		if !seen[c.Database.DefaultName] {
			return fmt.Errorf("database.default_name %q is not listed in multi_db.databases", c.Database.DefaultName)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("scheduler.timezone: %w", err)
	}
	if c.Scheduler.Enabled && c.Scheduler.QuoteCheckExpired == "" {
		return fmt.Errorf("scheduler.quote_check_expired is required")
	}

	if c.Mail.Workers <= 0 {
		return fmt.Errorf("mail.workers must be positive")
	}
	if c.Mail.MaxAttempts <= 0 {
		return fmt.Errorf("mail.max_attempts must be positive")
	}

	if c.Lark.AppID == "" {
		return fmt.Errorf("lark.app_id is required")
	}
	if c.Lark.AppSecret == "" {
		return fmt.Errorf("lark.app_secret is required")
	}

	return nil
}

// DatabaseNames returns the tenant databases the process serves, in configured order
func (c *Config) DatabaseNames() []string {
	if !c.MultiDB.Enabled {
		return []string{c.Database.DefaultName}
	}
	names := make([]string, len(c.MultiDB.Databases))
	copy(names, c.MultiDB.Databases)
	return names
}

// Location returns the scheduler time zone
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
