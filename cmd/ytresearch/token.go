package main

import (
	"fmt"
	"time"

	"trend-finder/infrastructure/configuration"
	"trend-finder/infrastructure/utils"

	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var subject string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the preset API",
		RunE: func(cmd *cobra.Command, args []string) error {
			configuration.LoadEnvFromFile("config.env", ".env")
			configuration.Reload()
			token, err := utils.GenerateToken(subject, ttl, configuration.C.App.SecretKey, time.Now())
			if err != nil {
				return fmt.Errorf("%w (set SECRET_KEY)", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
