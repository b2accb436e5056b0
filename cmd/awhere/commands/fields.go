package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// NewFieldsCommand creates the fields command group.
func NewFieldsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fields",
		Aliases: []string{"field"},
		Short:   "Manage fields",
		Long:    "List, inspect, create, rename and delete fields",
	}

	cmd.AddCommand(newFieldsListCommand())
	cmd.AddCommand(newFieldsGetCommand())
	cmd.AddCommand(newFieldsCreateCommand())
	cmd.AddCommand(newFieldsRenameCommand())
	cmd.AddCommand(newFieldsDeleteCommand())

	return cmd
}

func newFieldsListCommand() *cobra.Command {
	var (
		limit  int
		offset int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			params := awhere.Params{}
			if limit > 0 {
				params["limit"] = limit
			}

			if offset > 0 {
				params["offset"] = offset
			}

			list, err := client.Fields().List(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to list fields: %w", err)
			}

			return renderFields(cmd, list, list.Fields)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of fields")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of fields to skip")

	return cmd
}

func newFieldsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get FIELD_ID",
		Short: "Get a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			field, err := client.Fields().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get field: %w", err)
			}

			return renderFields(cmd, field, []awhere.Field{*field})
		},
	}
}

func newFieldsCreateCommand() *cobra.Command {
	var (
		request   awhere.FieldCreateRequest
		latitude  string
		longitude string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a field",
		Long:  "Create a field centered on --lat/--lng. The id, farm id and name are generated when omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			lat, lng, err := parseCoordinates(latitude, longitude)
			if err != nil {
				return err
			}

			request.Latitude = lat
			request.Longitude = lng

			client, err := CreateClient()
			if err != nil {
				return err
			}

			field, err := client.Fields().Create(context.Background(), &request)
			if err != nil {
				return fmt.Errorf("failed to create field: %w", err)
			}

			return renderFields(cmd, field, []awhere.Field{*field})
		},
	}

	cmd.Flags().StringVar(&request.ID, "id", "", "field id")
	cmd.Flags().StringVar(&request.FarmID, "farm", "", "farm id (defaults to the field id)")
	cmd.Flags().StringVar(&request.Name, "name", "", "field name")
	cmd.Flags().Float64Var(&request.Acres, "acres", 0, "field size in acres")
	cmd.Flags().Float64Var(&request.Hectares, "hectares", 0, "field size in hectares")
	cmd.Flags().StringVar(&latitude, "lat", "", "center latitude")
	cmd.Flags().StringVar(&longitude, "lng", "", "center longitude")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")

	return cmd
}

func newFieldsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename FIELD_ID NAME",
		Short: "Rename a field",
		Args:  cobra.ExactArgs(coordinateArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			name := args[1]

			field, err := client.Fields().Update(context.Background(), args[0], &awhere.FieldUpdateRequest{Name: &name})
			if err != nil {
				return fmt.Errorf("failed to rename field: %w", err)
			}

			return renderFields(cmd, field, []awhere.Field{*field})
		},
	}
}

func newFieldsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete FIELD_ID",
		Short: "Delete a field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			err = client.Fields().Delete(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to delete field: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted field %s\n", args[0])

			return nil
		},
	}
}

// NewResolveCommand creates the resolve command, which finds or creates the
// field at a coordinate.
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve LAT LNG",
		Short: "Find or create the field at a coordinate",
		Args:  cobra.ExactArgs(coordinateArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			latitude, longitude, err := parseCoordinates(args[0], args[1])
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			field, err := client.Resolver().Resolve(context.Background(), latitude, longitude)
			if err != nil {
				return fmt.Errorf("failed to resolve field: %w", err)
			}

			return renderFields(cmd, field, []awhere.Field{*field})
		},
	}
}

func renderFields(cmd *cobra.Command, data interface{}, fields []awhere.Field) error {
	return render(cmd.OutOrStdout(), data, func(table *tablewriter.Table) error {
		table.Header("ID", "Name", "Farm", "Acres", "Center")

		for _, field := range fields {
			err := table.Append(field.ID, orNA(field.Name), orNA(field.FarmID), orNA(field.Acres), field.CenterPoint.Key())
			if err != nil {
				return fmt.Errorf("failed to append field %s: %w", field.ID, err)
			}
		}

		return nil
	})
}
