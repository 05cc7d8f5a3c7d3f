package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Mode     string `mapstructure:"mode"`
	BaseURL  string `mapstructure:"base_url"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SiteURL is the public origin used to build callback and redirect URLs.
func (s *ServerConfig) SiteURL() string {
	return strings.TrimRight(s.BaseURL, "/")
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig holds the merchant credentials and remote payment service settings.
type GatewayConfig struct {
	BaseURL                string `mapstructure:"base_url"`
	APIVersion             string `mapstructure:"api_version"`
	AppID                  string `mapstructure:"app_id"`
	AppSecret              string `mapstructure:"app_secret"`
	TestMode               bool   `mapstructure:"test_mode"`
	Currency               string `mapstructure:"currency"`
	PluginVersion          string `mapstructure:"plugin_version"`
	InitiateTimeoutSeconds int    `mapstructure:"initiate_timeout_seconds"`
	ReportTimeoutSeconds   int    `mapstructure:"report_timeout_seconds"`
	PaymentFailEndpoint    string `mapstructure:"payment_fail_endpoint"`
	RefundFailEndpoint     string `mapstructure:"refund_fail_endpoint"`
}

func (g *GatewayConfig) InitiateTimeout() time.Duration {
	return time.Duration(g.InitiateTimeoutSeconds) * time.Second
}

func (g *GatewayConfig) ReportTimeout() time.Duration {
	return time.Duration(g.ReportTimeoutSeconds) * time.Second
}

type SessionConfig struct {
	CookieName string `mapstructure:"cookie_name"`
	KeyPrefix  string `mapstructure:"key_prefix"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
	Secure     bool   `mapstructure:"secure"`
}

func (s *SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type EmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// LockConfig bounds the per-order webhook lock.
type LockConfig struct {
	KeyPrefix   string `mapstructure:"key_prefix"`
	TTLSeconds  int    `mapstructure:"ttl_seconds"`
	WaitSeconds int    `mapstructure:"wait_seconds"`
}

func (l *LockConfig) TTL() time.Duration {
	return time.Duration(l.TTLSeconds) * time.Second
}

func (l *LockConfig) Wait() time.Duration {
	return time.Duration(l.WaitSeconds) * time.Second
}

// RateLimitConfig throttles the public checkout and webhook routes per client IP.
type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	RequestsPerHour   int  `mapstructure:"requests_per_hour"`
}

// SchedulerConfig controls the background maintenance jobs.
type SchedulerConfig struct {
	Enabled               bool `mapstructure:"enabled"`
	RefundSweepMinutes    int  `mapstructure:"refund_sweep_minutes"`
	CallbackRetentionDays int  `mapstructure:"callback_retention_days"`
}

func (s *SchedulerConfig) RefundSweepInterval() time.Duration {
	return time.Duration(s.RefundSweepMinutes) * time.Minute
}
