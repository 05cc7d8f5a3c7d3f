package http

import (
	"github.com/shoppingos/sospay/internal/infrastructure/ratelimit"
	"github.com/shoppingos/sospay/internal/interfaces/http/handlers"
	"github.com/shoppingos/sospay/internal/interfaces/http/middleware"
)

// Version is reported by the health endpoint; overridden at build time.
var Version = "dev"

type allHandlers struct {
	health   *handlers.HealthHandler
	checkout *handlers.CheckoutHandler
	webhook  *handlers.WebhookHandler
	order    *handlers.OrderHandler
	refund   *handlers.RefundHandler
	stat     *handlers.StatHandler
}

func (c *Container) newHandlers() *allHandlers {
	u := c.ucs

	return &allHandlers{
		health:   handlers.NewHealthHandler(Version),
		checkout: handlers.NewCheckoutHandler(u.saveSelectedBank, u.initiatePayment, c.log),
		webhook:  handlers.NewWebhookHandler(u.handlePaymentHook, u.handleRefundHook, c.log),
		order: handlers.NewOrderHandler(
			u.createOrder, u.listOrders, u.getOrderDetail, u.proceedToBankRefund, u.consumeRefundNotices, c.log,
		),
		refund: handlers.NewRefundHandler(u.processRefund, c.log),
		stat:   handlers.NewStatHandler(u.paymentStatistics, c.log),
	}
}

func (c *Container) initMiddlewares() {
	c.sessionMiddleware = middleware.NewSessionMiddleware(c.infra.sessions, middleware.SessionConfig{
		CookieName: c.cfg.Session.CookieName,
		MaxAge:     int(c.cfg.Session.TTL().Seconds()),
		Secure:     c.cfg.Session.Secure,
	})
	c.authMiddleware = middleware.NewAuthMiddleware(c.infra.jwt, c.log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.infra.enforcer, c.log)

	if c.infra.limiter != nil {
		c.rateLimiter = middleware.NewRateLimiter(c.infra.limiter, ratelimit.Policy{
			RequestsPerMinute: c.cfg.RateLimit.RequestsPerMinute,
			RequestsPerHour:   c.cfg.RateLimit.RequestsPerHour,
		}, c.log)
	}
}
