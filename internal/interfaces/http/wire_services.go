package http

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shoppingos/sospay/internal/application/common/callbacklog"
	"github.com/shoppingos/sospay/internal/application/common/links"
	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/domain/session"
	"github.com/shoppingos/sospay/internal/domain/shared"
	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/infrastructure/auth"
	"github.com/shoppingos/sospay/internal/infrastructure/cache"
	"github.com/shoppingos/sospay/internal/infrastructure/config"
	"github.com/shoppingos/sospay/internal/infrastructure/email"
	"github.com/shoppingos/sospay/internal/infrastructure/payment"
	"github.com/shoppingos/sospay/internal/infrastructure/permission"
	"github.com/shoppingos/sospay/internal/infrastructure/ratelimit"
	"github.com/shoppingos/sospay/internal/infrastructure/scheduler"
	"github.com/shoppingos/sospay/internal/shared/logger"
	"github.com/shoppingos/sospay/internal/shared/services/markdown"
	"github.com/shoppingos/sospay/internal/shared/version"
)

const eventBufferSize = 100

// infrastructure groups the non-repository adapters the use cases depend on.
type infrastructure struct {
	gateway  paymentgateway.Gateway
	sessions session.Store
	locker   shared.Locker
	limiter  ratelimit.RateLimiter
	links    *links.Builder
	recorder *callbacklog.Recorder
	renderer markdown.Renderer
	jwt      *auth.JWTService
	enforcer *permission.Enforcer
}

// InitRedis creates the Redis client and checks the connection.
func InitRedis(ctx context.Context, cfg *config.Config, log logger.Interface) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())

	return client, nil
}

func (c *Container) newInfrastructure() (*infrastructure, error) {
	cfg := c.cfg

	infra := &infrastructure{
		gateway: payment.NewShoppingOSClient(
			payment.NewEndpoints(cfg.Gateway.BaseURL, cfg.Gateway.APIVersion),
			payment.ClientConfig{
				AppID:           cfg.Gateway.AppID,
				AppSecret:       cfg.Gateway.AppSecret,
				InitiateTimeout: cfg.Gateway.InitiateTimeout(),
				ReportTimeout:   cfg.Gateway.ReportTimeout(),
			},
			c.log,
		),
		links:    links.NewBuilder(cfg.Server.SiteURL()),
		recorder: callbacklog.NewRecorder(c.repos.callbacks, c.log),
		renderer: markdown.NewRenderer(),
		jwt:      auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes),
	}

	if c.redis != nil {
		infra.sessions = cache.NewRedisSessionStore(c.redis, cfg.Session.KeyPrefix, cfg.Session.TTL())
		infra.locker = cache.NewRedisLocker(c.redis, cfg.Lock.KeyPrefix, cfg.Lock.TTL(), cfg.Lock.Wait(), c.log)
		if cfg.RateLimit.Enabled {
			infra.limiter = ratelimit.NewRedisRateLimiter(c.redis, "")
		}
	} else {
		c.log.Warnw("redis disabled, sessions and webhook locks are process-local")
		infra.sessions = cache.NewMemorySessionStore()
		infra.locker = cache.NewKeyedMutex(cfg.Lock.Wait())
	}

	enforcer, err := permission.NewEnforcer(c.db, c.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := permission.InitOrderPermissions(enforcer, c.log); err != nil {
		return nil, fmt.Errorf("failed to seed permissions: %w", err)
	}
	infra.enforcer = enforcer

	return infra, nil
}

func newGatewaySettings(cfg *config.Config) paymentgateway.Settings {
	return paymentgateway.Settings{
		TestMode:            cfg.Gateway.TestMode,
		Currency:            cfg.Gateway.Currency,
		Version:             version.Wire(cfg.Gateway.PluginVersion),
		PaymentFailEndpoint: paymentgateway.EndpointName(cfg.Gateway.PaymentFailEndpoint),
		RefundFailEndpoint:  paymentgateway.EndpointName(cfg.Gateway.RefundFailEndpoint),
	}
}

// initEvents starts the dispatcher and subscribes the refund mailer when SMTP
// is configured.
func (c *Container) initEvents() error {
	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, c.log)

	if c.cfg.Email.Enabled {
		svc := email.NewSMTPEmailService(email.SMTPConfig{
			Host:        c.cfg.Email.SMTPHost,
			Port:        c.cfg.Email.SMTPPort,
			Username:    c.cfg.Email.SMTPUser,
			Password:    c.cfg.Email.SMTPPassword,
			FromAddress: c.cfg.Email.FromAddress,
			FromName:    c.cfg.Email.FromName,
			BaseURL:     c.cfg.Server.SiteURL(),
		})
		if err := email.NewRefundNotifier(svc, c.log).Register(c.dispatcher); err != nil {
			return fmt.Errorf("failed to register refund notifier: %w", err)
		}
	}

	if err := c.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	c.log.Infow("event dispatcher started", "email_notifications", c.cfg.Email.Enabled)
	return nil
}

// initScheduler registers the maintenance jobs and starts them when enabled.
func (c *Container) initScheduler() error {
	if !c.cfg.Scheduler.Enabled {
		return nil
	}

	m, err := scheduler.NewSchedulerManager(c.log)
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := m.RegisterRefundSweep(c.ucs.expireAbandonedRefunds, c.cfg.Scheduler.RefundSweepInterval()); err != nil {
		return fmt.Errorf("failed to register refund sweep: %w", err)
	}
	pruner := callbacklog.NewPruner(c.repos.callbacks, c.cfg.Scheduler.CallbackRetentionDays, c.log)
	if err := m.RegisterCallbackLogCleanup(pruner); err != nil {
		return fmt.Errorf("failed to register callback log cleanup: %w", err)
	}

	m.Start()
	c.scheduler = m
	return nil
}
