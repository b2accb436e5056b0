package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// NewJobsCommand creates the jobs command group.
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Run and inspect batch jobs",
	}

	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsBatchCommand())

	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get JOB_ID",
		Short: "Show a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			job, err := client.Jobs().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get job: %w", err)
			}

			return render(cmd.OutOrStdout(), job, func(table *tablewriter.Table) error {
				table.Header("Job", "Status", "Results")

				return table.Append(job.JobID.String(), orNA(job.JobStatus), strconv.Itoa(len(job.Results)))
			})
		},
	}
}

func newJobsBatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batch PATH[?QUERY]...",
		Short: "Run GET requests as one batch job and wait for the results",
		Long: `Run GET requests as one batch job and wait for the results.

Each argument is an API path, optionally with a query string:

  awhere jobs batch /v2/weather/fields/f1/forecasts /v2/weather/fields/f2/forecasts?limit=3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests := make([]awhere.BatchRequest, 0, len(args))
			for _, arg := range args {
				requests = append(requests, awhere.BatchRequest{Path: arg})
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			results, err := client.Jobs().Batch(context.Background(), requests)
			if err != nil {
				return fmt.Errorf("failed to run batch job: %w", err)
			}

			format, err := outputFormat()
			if err != nil {
				return err
			}

			if format != constants.FormatTable {
				return renderJSON(cmd.OutOrStdout(), results)
			}

			return render(cmd.OutOrStdout(), results, func(table *tablewriter.Table) error {
				table.Header("Title", "Status", "Payload")

				for _, result := range results {
					err := table.Append(result.Title, orNA(result.HTTPStatus), truncate(string(result.Payload)))
					if err != nil {
						return fmt.Errorf("failed to append result %s: %w", result.Title, err)
					}
				}

				return nil
			})
		},
	}
}

const maxPayloadWidth = 60

func truncate(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxPayloadWidth {
		return text
	}

	return text[:maxPayloadWidth] + "..."
}
