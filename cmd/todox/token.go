package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ncobase/todox/config"
	"github.com/ncobase/todox/nanoid"
	securityjwt "github.com/ncobase/todox/security/jwt"
)

// NewTokenCommand creates the token command. It mints an access token
// for local API testing; issuing real sessions is not this binary's job.
func NewTokenCommand() *cobra.Command {
	var (
		configPath string
		userID     string
		tenantID   string
		expire     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a development access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if cfg.Auth == nil || cfg.Auth.JWT == nil || cfg.Auth.JWT.Secret == "" {
				return fmt.Errorf("auth.jwt.secret is not configured")
			}

			tm := securityjwt.NewTokenManager(cfg.Auth.JWT.Secret)
			token, err := tm.GenerateAccessTokenWithExpiry(nanoid.Must(), map[string]any{
				"user_id":   userID,
				"tenant_id": tenantID,
			}, expire)
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token")
	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant id to embed in the token")
	cmd.Flags().DurationVar(&expire, "expire", securityjwt.DefaultAccessTokenExpire, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
