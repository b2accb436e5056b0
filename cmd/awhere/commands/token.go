package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
)

const tokenPreviewLength = 8

// NewTokenCommand creates the token command.
func NewTokenCommand() *cobra.Command {
	var showToken bool

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Fetch an access token",
		Long:  "Exchange the configured key and secret for a bearer token and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			started := time.Now()

			token, err := client.GetToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get token: %w", err)
			}

			display := token
			if !showToken && len(token) > tokenPreviewLength {
				display = token[:tokenPreviewLength] + constants.MaskedSecret
			}

			status := map[string]interface{}{
				"endpoint": orNA(viper.GetString("api")),
				"token":    display,
				"elapsed":  time.Since(started).Round(time.Millisecond).String(),
			}

			return render(cmd.OutOrStdout(), status, func(table *tablewriter.Table) error {
				table.Header("Property", "Value")

				for _, key := range []string{"endpoint", "token", "elapsed"} {
					err := table.Append(key, fmt.Sprint(status[key]))
					if err != nil {
						return fmt.Errorf("failed to append %s: %w", key, err)
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showToken, "show", false, "print the full token")

	return cmd
}
