package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shoppingos/sospay/internal/application/payment/paymentgateway"
	"github.com/shoppingos/sospay/internal/domain/shared/events"
	"github.com/shoppingos/sospay/internal/infrastructure/config"
	"github.com/shoppingos/sospay/internal/infrastructure/scheduler"
	"github.com/shoppingos/sospay/internal/interfaces/http/middleware"
	"github.com/shoppingos/sospay/internal/shared/logger"
)

// Container holds the infrastructure, use cases, handlers and middleware of
// the service and wires them together. Shutdown stops background work.
type Container struct {
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	repos    *repositories
	infra    *infrastructure
	settings paymentgateway.Settings
	ucs      *allUseCases
	hdlrs    *allHandlers

	dispatcher *events.InMemoryEventDispatcher
	scheduler  *scheduler.SchedulerManager

	sessionMiddleware    *middleware.SessionMiddleware
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	rateLimiter          *middleware.RateLimiter
}

// NewContainer builds every component. redisClient may be nil, in which case
// sessions and locks are kept in process and rate limiting is disabled.
func NewContainer(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
		redis:  redisClient,
	}

	c.repos = newRepositories(db, log)

	infra, err := c.newInfrastructure()
	if err != nil {
		return nil, err
	}
	c.infra = infra

	c.settings = newGatewaySettings(cfg)

	if err := c.initEvents(); err != nil {
		return nil, err
	}

	c.ucs = c.newUseCases()
	c.hdlrs = c.newHandlers()
	c.initMiddlewares()

	if err := c.initScheduler(); err != nil {
		_ = c.dispatcher.Stop()
		return nil, err
	}

	return c, nil
}

// Engine returns the gin engine with routes registered by SetupRoutes.
func (c *Container) Engine() *gin.Engine {
	return c.engine
}

// Shutdown stops the scheduler, drains queued events and closes the redis client.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.scheduler != nil {
		if err := c.scheduler.Stop(); err != nil {
			errs = append(errs, err)
		}
	}

	done := make(chan error, 1)
	go func() { done <- c.dispatcher.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			errs = append(errs, err)
		}
	case <-ctx.Done():
		errs = append(errs, ctx.Err())
	}

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
