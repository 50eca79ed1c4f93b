package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/persistence"
	"github.com/tripfriend/auth-service/internal/service"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and revoke active sessions",
}

var showSessionCmd = &cobra.Command{
	Use:   "show [username]",
	Short: "Show a member's active session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn := sessionService(cmd.Context())
		defer closeFn()

		info, err := svc.ActiveSession(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		if info == nil {
			pterm.Info.Printfln("%s has no active session", args[0])
			return nil
		}
		pterm.Info.Printfln("%s holds a %s session until %s", info.Subject, info.Kind, info.ExpiresAt.Format(time.RFC1123))
		return nil
	},
}

var revokeSessionCmd = &cobra.Command{
	Use:   "revoke [username]",
	Short: "Force-logout a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn := sessionService(cmd.Context())
		defer closeFn()

		revoked, err := svc.RevokeSession(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
		if !revoked {
			pterm.Warning.Printfln("%s had no active session", args[0])
			return nil
		}
		pterm.Success.Printfln("Revoked the active session of %s", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(showSessionCmd)
	sessionsCmd.AddCommand(revokeSessionCmd)
}

// sessionService builds an AuthService backed only by Redis; session
// commands never touch credentials.
func sessionService(ctx context.Context) (*service.AuthService, func()) {
	rdb := persistence.NewRedis(ctx, cfg.Redis, cfg.Auth.SessionStoreTimeout(), zap.NewNop())
	sessions := auth.NewRedisSessionStore(rdb.Client, cfg.Auth.SessionStoreTimeout())
	svc := service.NewAuthService(cfg.Auth, service.AuthDependencies{Sessions: sessions})
	return svc, rdb.Close
}
