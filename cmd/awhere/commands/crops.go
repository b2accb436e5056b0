package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// NewCropsCommand creates the crops command.
func NewCropsCommand() *cobra.Command {
	var query awhere.CropQuery

	cmd := &cobra.Command{
		Use:     "crops",
		Aliases: []string{"crop"},
		Short:   "List crops",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			list, err := client.Crops().List(context.Background(), &query)
			if err != nil {
				return fmt.Errorf("failed to list crops: %w", err)
			}

			return render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header("ID", "Name", "Type", "Variety", "Default")

				for _, crop := range list.Crops {
					err := table.Append(crop.ID, crop.Name, orNA(crop.Type), orNA(crop.Variety),
						strconv.FormatBool(crop.IsDefaultForCrop))
					if err != nil {
						return fmt.Errorf("failed to append crop %s: %w", crop.ID, err)
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&query.DefaultsOnly, "defaults", false, "only the default variety of each crop")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "maximum number of crops")

	return cmd
}

// NewModelsCommand creates the models command.
func NewModelsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "models",
		Aliases: []string{"model"},
		Short:   "List agronomic models",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := awhere.Params{}
			if limit > 0 {
				params["limit"] = limit
			}

			list, err := client.Crops().Models(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list models: %w", err)
			}

			return render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header("ID", "Name", "Type", "Description")

				for _, model := range list.Models {
					err := table.Append(model.ID, model.Name, orNA(model.Type), orNA(model.Description))
					if err != nil {
						return fmt.Errorf("failed to append model %s: %w", model.ID, err)
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of models")

	return cmd
}
