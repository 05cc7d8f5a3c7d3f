package token

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shoppingos/sospay/internal/infrastructure/auth"
	"github.com/shoppingos/sospay/internal/infrastructure/config"
	"github.com/shoppingos/sospay/internal/infrastructure/permission"
)

var (
	env        string
	configPath string
	email      string
	role       string
)

// NewCommand issues admin access tokens signed with the configured JWT secret.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin access token",
		Long:  `Print a signed admin JWT for the refund and order API. Pass it as a Bearer token or the sos_admin_token cookie.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().StringVar(&email, "email", "", "Administrator e-mail; refund outcome mails go here")
	cmd.Flags().StringVar(&role, "role", permission.RoleShopManager, "Role (admin, shop_manager, viewer)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	switch role {
	case permission.RoleAdmin, permission.RoleShopManager, permission.RoleViewer:
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Auth.JWT.Secret == "" {
		return fmt.Errorf("auth.jwt.secret is not configured")
	}

	svc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	signed, err := svc.Generate(email, role)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), signed)
	return nil
}
