package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewAgronomicsCommand creates the agronomics command group.
func NewAgronomicsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agronomics",
		Aliases: []string{"agro"},
		Short:   "Show agronomic values and model results",
	}

	cmd.AddCommand(newAgronomicsValuesCommand())
	cmd.AddCommand(newAgronomicsResultsCommand())

	return cmd
}

func newAgronomicsValuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "values FIELD_ID [key=value...]",
		Short: "Show daily agronomic values of a field",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[1:])
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			values, err := client.Agronomics().Values(context.Background(), args[0], params)
			if err != nil {
				return fmt.Errorf("failed to get agronomic values: %w", err)
			}

			return render(cmd.OutOrStdout(), values, func(table *tablewriter.Table) error {
				table.Header("Date", "GDD", "PET", "P/PET", "Accumulated GDD", "Accumulated Precipitation")

				for _, day := range values.DailyValues {
					err := table.Append(day.Date, orNA(day.GDD), orNA(day.PET), orNA(day.PPET),
						orNA(day.AccumulatedGDD), orNA(day.AccumulatedPrecip))
					if err != nil {
						return fmt.Errorf("failed to append %s: %w", day.Date, err)
					}
				}

				return nil
			})
		},
	}
}

func newAgronomicsResultsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "results FIELD_ID MODEL_ID [key=value...]",
		Short: "Show model results for a field",
		Args:  cobra.MinimumNArgs(coordinateArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := parseParams(args[2:])
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			results, err := client.Agronomics().ModelResults(context.Background(), args[0], args[1], params)
			if err != nil {
				return fmt.Errorf("failed to get model results: %w", err)
			}

			// Stages differ per model, so they are only shown as JSON.
			return renderJSON(cmd.OutOrStdout(), results)
		},
	}
}
