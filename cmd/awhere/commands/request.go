package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// NewRequestCommand creates the request command, a raw authenticated call.
func NewRequestCommand() *cobra.Command {
	var (
		form   bool
		header []string
	)

	cmd := &cobra.Command{
		Use:   "request METHOD PATH [key=value...]",
		Short: "Send an authenticated API request",
		Long: `Send an authenticated API request and print the response body.

Parameters go to the query string for GET and to a JSON body otherwise.

  awhere request GET /v2/fields limit=5
  awhere request PATCH /v2/fields/f1 name=North`,
		Args: cobra.MinimumNArgs(coordinateArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}

			options := &awhere.RequestOptions{
				Method:  strings.ToUpper(args[0]),
				Path:    args[1],
				Headers: map[string]string{},
			}

			if form {
				options.Encoding = awhere.EncodingForm
			}

			for _, value := range header {
				name, content, ok := strings.Cut(value, ":")
				if !ok {
					return fmt.Errorf("%w: %q", ErrInvalidParam, value)
				}

				options.Headers[strings.TrimSpace(name)] = strings.TrimSpace(content)
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			raw, err := client.APIRequest(context.Background(), options, params)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			if raw == nil {
				return nil
			}

			var decoded interface{}
			err = json.Unmarshal(raw, &decoded)
			if err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}

			return renderJSON(cmd.OutOrStdout(), decoded)
		},
	}

	cmd.Flags().BoolVar(&form, "form", false, "send parameters form encoded")
	cmd.Flags().StringArrayVarP(&header, "header", "H", nil, "extra header, Name: value")

	return cmd
}
