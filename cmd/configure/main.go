package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studyflow/studyflow-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "studyflow-configure",
		Short: "Configuration tool for the StudyFlow API",
		Long:  "CLI tool for configuring OIDC providers, CORS, rate limits and availability presets",
	}

	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewAvailabilityCmd())
	rootCmd.AddCommand(commands.NewListCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
