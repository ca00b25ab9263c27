package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/AKT74/shareulbi-backend/cmd/do/cmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "do",
		Short: "Operational tools for the ShareULBI backend",
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.CreateAdminCmd())
	rootCmd.AddCommand(cmd.ToolsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
