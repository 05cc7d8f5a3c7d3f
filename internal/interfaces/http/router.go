package http

import (
	"github.com/shoppingos/sospay/internal/infrastructure/permission"
	"github.com/shoppingos/sospay/internal/interfaces/http/middleware"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	c.engine.Use(middleware.RequestLogger(c.log))
	c.engine.Use(middleware.Recovery(c.log))

	c.engine.GET("/health", c.hdlrs.health.Check)

	site := c.engine.Group("", c.sessionMiddleware.Handle())

	// the payment service sends shoppers and administrators back here
	site.GET("/", c.rateLimiter.Limit("webhook"), c.hdlrs.webhook.Dispatch)

	c.setupCheckoutRoutes()
	c.setupAdminRoutes()
}

func (c *Container) setupCheckoutRoutes() {
	checkout := c.engine.Group("/checkout", c.sessionMiddleware.Handle(), c.rateLimiter.Limit("checkout"))
	{
		checkout.GET("", c.hdlrs.checkout.Checkout)
		checkout.GET("/order-received/:id/", c.hdlrs.checkout.OrderReceived)
		checkout.POST("/orders/:id/bank", c.hdlrs.checkout.SaveBank)
		checkout.POST("/orders/:id/pay", c.hdlrs.checkout.Pay)
		checkout.GET("/notices", c.hdlrs.checkout.Notices)
	}
}

func (c *Container) setupAdminRoutes() {
	perm := c.permissionMiddleware

	admin := c.engine.Group("/admin", c.sessionMiddleware.Handle(), c.authMiddleware.RequireAuth())
	{
		admin.GET("/orders", perm.RequirePermission(permission.ResourceOrders, permission.ActionRead), c.hdlrs.order.List)
		admin.POST("/orders", perm.RequirePermission(permission.ResourceOrders, permission.ActionCreate), c.hdlrs.order.Create)
		admin.GET("/orders/:id", perm.RequirePermission(permission.ResourceOrders, permission.ActionRead), c.hdlrs.order.Get)
		admin.POST("/orders/:id/refunds", perm.RequirePermission(permission.ResourceOrders, permission.ActionRefund), c.hdlrs.refund.Create)

		admin.GET("/stats", perm.RequirePermission(permission.ResourceStats, permission.ActionRead), c.hdlrs.stat.Payments)
	}
}
