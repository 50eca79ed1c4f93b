package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tripfriend/auth-service/internal/api/dto"
	"github.com/tripfriend/auth-service/internal/auth"
	"github.com/tripfriend/auth-service/internal/domain"
	"github.com/tripfriend/auth-service/internal/persistence"
	"github.com/tripfriend/auth-service/internal/repository"
)

var (
	usernameFlag string
	emailFlag    string
	passwordFlag string
	roleFlag     string
	verifiedFlag bool
	stdinFlag    bool
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage member credentials",
}

var createMemberCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a member with a bcrypt-hashed password",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}

		req := dto.CreateMemberRequest{
			Username: usernameFlag,
			Email:    emailFlag,
			Password: password,
			Role:     domain.Role(strings.ToUpper(roleFlag)),
			Verified: verifiedFlag,
		}
		if err := req.Validate(); err != nil {
			return fmt.Errorf("invalid member: %w", err)
		}

		hash, err := auth.HashPassword(req.Password, cfg.Auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}

		ctx := context.Background()
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, zap.NewNop())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pg.Close()
		if pg.PoolHandle() == nil {
			return fmt.Errorf("POSTGRES_DSN is required")
		}

		cred := &domain.Credential{
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         req.Role,
			Verified:     req.Verified,
		}
		if err := repository.NewCredentialRepository(pg.PoolHandle()).Create(ctx, cred); err != nil {
			return fmt.Errorf("failed to create member: %w", err)
		}

		pterm.Success.Printfln("Created member %s (id %d, role %s)", cred.Username, cred.ID, cred.Role)
		return nil
	},
}

func init() {
	createMemberCmd.Flags().StringVar(&usernameFlag, "username", "", "Login name")
	createMemberCmd.Flags().StringVar(&emailFlag, "email", "", "Email address")
	createMemberCmd.Flags().StringVar(&passwordFlag, "password", "", "Plaintext password")
	createMemberCmd.Flags().StringVar(&roleFlag, "role", string(domain.RoleUser), "USER or ADMIN")
	createMemberCmd.Flags().BoolVar(&verifiedFlag, "verified", true, "Mark the email address as verified")
	createMemberCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read the password from stdin")
	_ = createMemberCmd.MarkFlagRequired("username")
	_ = createMemberCmd.MarkFlagRequired("email")

	membersCmd.AddCommand(createMemberCmd)
}
