package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/shoppingos/sospay/internal/shared/config"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Gateway   sharedConfig.GatewayConfig   `mapstructure:"gateway"`
	Session   sharedConfig.SessionConfig   `mapstructure:"session"`
	Auth      sharedConfig.AuthConfig      `mapstructure:"auth"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Lock      sharedConfig.LockConfig      `mapstructure:"lock"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"rate_limit"`
	Scheduler sharedConfig.SchedulerConfig `mapstructure:"scheduler"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configPath when set), overlays SOSPAY_*
// environment variables and applies defaults.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("SOSPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "sospay_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("gateway.base_url", "https://service.shoppingos.com")
	v.SetDefault("gateway.api_version", "v1")
	v.SetDefault("gateway.app_id", "")
	v.SetDefault("gateway.app_secret", "")
	v.SetDefault("gateway.test_mode", true)
	v.SetDefault("gateway.currency", "GBP")
	v.SetDefault("gateway.plugin_version", "1.0.0")
	v.SetDefault("gateway.initiate_timeout_seconds", 30)
	v.SetDefault("gateway.report_timeout_seconds", 10)
	v.SetDefault("gateway.payment_fail_endpoint", "fail")
	v.SetDefault("gateway.refund_fail_endpoint", "token")

	v.SetDefault("session.cookie_name", "sos_session")
	v.SetDefault("session.key_prefix", "sos:session:")
	v.SetDefault("session.ttl_minutes", 120)
	v.SetDefault("session.secure", false)

	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "noreply@shoppingos.local")
	v.SetDefault("email.from_name", "ShoppingOS Payments")

	v.SetDefault("lock.key_prefix", "sos:lock:order:")
	v.SetDefault("lock.ttl_seconds", 30)
	v.SetDefault("lock.wait_seconds", 5)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_minute", 30)
	v.SetDefault("rate_limit.requests_per_hour", 600)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.refund_sweep_minutes", 5)
	v.SetDefault("scheduler.callback_retention_days", 90)
}
