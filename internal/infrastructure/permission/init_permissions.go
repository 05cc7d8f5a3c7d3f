package permission

import (
	"fmt"

	"github.com/shoppingos/sospay/internal/shared/logger"
)

// Roles carried in admin tokens.
const (
	RoleAdmin       = "admin"
	RoleShopManager = "shop_manager"
	RoleViewer      = "viewer"
)

// Resources and actions checked by the admin routes.
const (
	ResourceOrders = "orders"
	ResourceStats  = "stats"

	ActionRead   = "read"
	ActionCreate = "create"
	ActionRefund = "refund"
)

// InitOrderPermissions seeds the default admin policies. Adding an existing
// policy is a no-op, so it is safe on every startup.
func InitOrderPermissions(e *Enforcer, log logger.Interface) error {
	policies := [][]string{
		{RoleViewer, ResourceOrders, ActionRead},
		{RoleViewer, ResourceStats, ActionRead},

		{RoleShopManager, ResourceOrders, ActionCreate},
		{RoleShopManager, ResourceOrders, ActionRefund},
	}

	for _, p := range policies {
		if err := e.AddPolicy(p[0], p[1], p[2]); err != nil {
			return fmt.Errorf("failed to add policy [%s, %s, %s]: %w", p[0], p[1], p[2], err)
		}
	}

	inheritance := [][2]string{
		{RoleShopManager, RoleViewer},
		{RoleAdmin, RoleShopManager},
	}
	for _, r := range inheritance {
		if err := e.AddRoleInheritance(r[0], r[1]); err != nil {
			return err
		}
	}

	log.Info("order permissions initialized successfully")
	return nil
}
