package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/shoppingos/sospay/internal/interfaces/cli/migrate"
	"github.com/shoppingos/sospay/internal/interfaces/cli/server"
	"github.com/shoppingos/sospay/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "sospay",
		Short:        "sospay - ShoppingOS bank payments and refunds",
		Long:         `sospay takes open-banking payments and refunds through ShoppingOS and reconciles the bank's webhooks with store orders.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
