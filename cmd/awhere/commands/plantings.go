package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// NewPlantingsCommand creates the plantings command group.
func NewPlantingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plantings",
		Aliases: []string{"planting"},
		Short:   "Manage plantings",
	}

	cmd.AddCommand(newPlantingsListCommand())
	cmd.AddCommand(newPlantingsCurrentCommand())
	cmd.AddCommand(newPlantingsCreateCommand())
	cmd.AddCommand(newPlantingsDeleteCommand())

	return cmd
}

func newPlantingsListCommand() *cobra.Command {
	var fieldID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List plantings for the account or a field",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			raw, err := client.Plantings().List(context.Background(), &awhere.PlantingQuery{FieldID: fieldID})
			if err != nil {
				return fmt.Errorf("failed to list plantings: %w", err)
			}

			var list struct {
				Plantings []awhere.Planting `json:"plantings" yaml:"plantings"`
			}

			err = json.Unmarshal(raw, &list)
			if err != nil {
				return fmt.Errorf("failed to parse plantings: %w", err)
			}

			return renderPlantings(cmd, list, list.Plantings)
		},
	}

	cmd.Flags().StringVar(&fieldID, "field", "", "only plantings of this field")

	return cmd
}

func newPlantingsCurrentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "current FIELD_ID",
		Short: "Show the current planting of a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			planting, err := client.Plantings().Current(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get current planting: %w", err)
			}

			return renderPlantings(cmd, planting, []awhere.Planting{*planting})
		},
	}
}

func newPlantingsCreateCommand() *cobra.Command {
	var (
		request     awhere.PlantingRequest
		getOrCreate bool
	)

	cmd := &cobra.Command{
		Use:   "create FIELD_ID",
		Short: "Create a planting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if request.PlantingDate != "" {
				date, err := awhere.NormalizeDate(request.PlantingDate)
				if err != nil {
					return err
				}

				request.PlantingDate = date
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			create := client.Plantings().Create
			if getOrCreate {
				create = client.Plantings().GetOrCreate
			}

			planting, err := create(context.Background(), args[0], &request)
			if err != nil {
				return fmt.Errorf("failed to create planting: %w", err)
			}

			return renderPlantings(cmd, planting, []awhere.Planting{*planting})
		},
	}

	cmd.Flags().StringVar(&request.Crop, "crop", "", "crop id, for example corn-hybrid")
	cmd.Flags().StringVar(&request.PlantingDate, "date", "", "planting date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&getOrCreate, "if-missing", false, "keep an existing current planting")
	_ = cmd.MarkFlagRequired("crop")

	return cmd
}

func newPlantingsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FIELD_ID [PLANTING_ID]",
		Short: "Delete a planting (the current one by default)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			plantingID := ""
			if len(args) > 1 {
				plantingID = args[1]
			}

			err = client.Plantings().Delete(context.Background(), args[0], plantingID)
			if err != nil {
				return fmt.Errorf("failed to delete planting: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted planting of field %s\n", args[0])

			return nil
		},
	}
}

func renderPlantings(cmd *cobra.Command, data interface{}, plantings []awhere.Planting) error {
	return render(cmd.OutOrStdout(), data, func(table *tablewriter.Table) error {
		table.Header("ID", "Field", "Crop", "Planted", "Harvested")

		for _, planting := range plantings {
			err := table.Append(orNA(planting.ID), orNA(planting.FieldID), orNA(planting.Crop),
				orNA(planting.PlantingDate), orNA(planting.ActualHarvestDate))
			if err != nil {
				return fmt.Errorf("failed to append planting: %w", err)
			}
		}

		return nil
	})
}
