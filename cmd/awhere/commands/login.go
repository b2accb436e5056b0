package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
	"github.com/fivetwenty-io/awhere-client/pkg/awhereclient"
)

// NewLoginCommand creates the login command. It checks the credentials by
// fetching a token and saves them to the config file.
func NewLoginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Save and verify API credentials",
		Long:  "Verify an API key and secret against the token endpoint and store them in the config file. Missing values are prompted for.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := viper.GetString("key")
			secret := viper.GetString("secret")
			reader := bufio.NewReader(cmd.InOrStdin())

			if key == "" {
				_, _ = fmt.Fprint(cmd.OutOrStdout(), "API key: ")

				line, err := reader.ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("failed to read API key: %w", err)
				}

				key = strings.TrimSpace(line)
			}

			if secret == "" {
				prompted, err := promptSecret(cmd, reader)
				if err != nil {
					return err
				}

				secret = prompted
			}

			client, err := awhereclient.New(&awhere.Config{
				APIEndpoint: viper.GetString("api"),
				Key:         key,
				Secret:      secret,
			})
			if err != nil {
				return err
			}

			_, err = client.GetToken(context.Background())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			config := loadConfig()
			config.Key = key
			config.Secret = secret

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Authenticated and saved credentials")

			return nil
		},
	}
}

// promptSecret reads the secret without echo when stdin is a terminal.
func promptSecret(cmd *cobra.Command, reader *bufio.Reader) (string, error) {
	_, _ = fmt.Fprint(cmd.OutOrStdout(), "API secret: ")

	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
		secretBytes, err := term.ReadPassword(fd)
		if err != nil {
			return "", fmt.Errorf("failed to read API secret: %w", err)
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout())

		return string(secretBytes), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read API secret: %w", err)
	}

	return strings.TrimSpace(line), nil
}
