// Reelmatch - Content-Based Recommendations for Streaming Catalogs
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelmatch

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/reelmatch/internal/auth"
)

type tokenOutput struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

func tokenCommand(st *state) *cobra.Command {
	var (
		username string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the admin routes",
		Long: `Token signs an HS256 token with JWT_SECRET. The token is valid for
JWT_TTL and is accepted by servers running with AUTH_MODE=jwt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" {
				return fmt.Errorf("--user is required")
			}
			mgr, err := auth.NewJWTManager(&st.cfg.Security)
			if err != nil {
				return err
			}
			issued := time.Now().UTC()
			token, err := mgr.GenerateToken(username, role)
			if err != nil {
				return err
			}
			ttl := st.cfg.Security.TokenTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			return writeJSON(cmd.OutOrStdout(), tokenOutput{
				Token:     token,
				Username:  username,
				Role:      role,
				ExpiresAt: issued.Add(ttl).Truncate(time.Second),
			})
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Subject of the token")
	cmd.Flags().StringVar(&role, "role", auth.RoleAdmin, "Role claim")
	return cmd
}
