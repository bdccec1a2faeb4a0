package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"conferencecentral/config"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/domain"
)

func init() {
	rootCmd.AddCommand(newTokenCmd(), newHashTaskKeyCmd())
}

func newTokenCmd() *cobra.Command {
	var (
		identity domain.Identity
		expiry   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return issueToken(cmd.OutOrStdout(), cfg.JWTSecret, identity, expiry)
		},
	}
	cmd.Flags().StringVar(&identity.UserID, "user", "", "User ID placed in the sub claim (required)")
	cmd.Flags().StringVar(&identity.Email, "email", "", "Email claim")
	cmd.Flags().StringVar(&identity.Name, "name", "", "Display name claim")
	cmd.Flags().DurationVar(&expiry, "expiry", 24*time.Hour, "Token lifetime")
	if err := cmd.MarkFlagRequired("user"); err != nil {
		panic(fmt.Sprintf("failed to mark flag as required: %v", err))
	}
	return cmd
}

func issueToken(w io.Writer, secret string, identity domain.Identity, expiry time.Duration) error {
	token, err := auth.NewJWTIssuer(secret).Issue(identity, expiry)
	if err != nil {
		return fmt.Errorf("issue token: %w", err)
	}
	_, err = fmt.Fprintln(w, token)
	return err
}

func newHashTaskKeyCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-task-key KEY",
		Short: "Print the bcrypt hash to use as TASK_KEY_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashTaskKey(args[0], cost)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
