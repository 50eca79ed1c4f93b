package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/tripfriend/auth-service/internal/config"
)

var (
	cfg     *config.Config
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "authctl",
	Short: "Operator CLI for the tripfriend auth service",
	Long: `authctl talks directly to the auth service's Postgres and Redis to seed
members, inspect or revoke sessions and decode bearer tokens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile != "" {
			if err := godotenv.Overload(envFile); err != nil {
				return fmt.Errorf("failed to read env file %s: %w", envFile, err)
			}
		}
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file before reading configuration")

	rootCmd.AddCommand(membersCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(tokenCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
