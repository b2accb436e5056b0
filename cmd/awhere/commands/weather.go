package commands

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

// location selects weather data by field id or by coordinate.
type location struct {
	fieldID   string
	latitude  string
	longitude string
}

func (l *location) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&l.fieldID, "field", "", "field id")
	cmd.Flags().StringVar(&l.latitude, "lat", "", "latitude (finds or creates the field)")
	cmd.Flags().StringVar(&l.longitude, "lng", "", "longitude (finds or creates the field)")
}

// coordinates reports whether the coordinate form was used and parses it.
func (l *location) coordinates() (bool, float64, float64, error) {
	switch {
	case l.fieldID != "" && l.latitude == "" && l.longitude == "":
		return false, 0, 0, nil
	case l.fieldID == "" && l.latitude != "" && l.longitude != "":
		latitude, longitude, err := parseCoordinates(l.latitude, l.longitude)

		return true, latitude, longitude, err
	default:
		return false, 0, 0, ErrFieldOrCoordinates
	}
}

// NewWeatherCommand creates the weather command group.
func NewWeatherCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show weather for a field or coordinate",
	}

	cmd.AddCommand(newWeatherCurrentCommand())
	cmd.AddCommand(newWeatherForecastCommand())
	cmd.AddCommand(newWeatherObservationsCommand())

	return cmd
}

func newWeatherCurrentCommand() *cobra.Command {
	var where location

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show current conditions",
		RunE: func(cmd *cobra.Command, args []string) error {
			atCoordinates, latitude, longitude, err := where.coordinates()
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var conditions *awhere.CurrentConditions
			if atCoordinates {
				conditions, err = client.Weather().CurrentConditionsAt(ctx, latitude, longitude)
			} else {
				conditions, err = client.Weather().CurrentConditions(ctx, where.fieldID)
			}

			if err != nil {
				return fmt.Errorf("failed to get current conditions: %w", err)
			}

			return render(cmd.OutOrStdout(), conditions, func(table *tablewriter.Table) error {
				table.Header("Field", "Time", "Conditions", "Temperature", "Precipitation", "Humidity", "Wind")

				return table.Append(orNA(conditions.FieldID), orNA(conditions.DateTime), orNA(conditions.ConditionsText),
					orNA(conditions.Temperature), orNA(conditions.Precipitation),
					orNA(conditions.RelativeHumidity), orNA(conditions.Wind))
			})
		},
	}

	where.addFlags(cmd)

	return cmd
}

func newWeatherForecastCommand() *cobra.Command {
	var (
		where location
		query awhere.ForecastQuery
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Show forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			atCoordinates, latitude, longitude, err := where.coordinates()
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var list *awhere.ForecastList
			if atCoordinates {
				list, err = client.Weather().ForecastsAt(ctx, latitude, longitude, &query)
			} else {
				list, err = client.Weather().Forecasts(ctx, where.fieldID, &query)
			}

			if err != nil {
				return fmt.Errorf("failed to get forecasts: %w", err)
			}

			return render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header("Date", "Start", "End", "Conditions", "Min", "Max", "Chance")

				for _, day := range list.Forecasts {
					for _, block := range day.Forecast {
						minimum, maximum := constants.NotAvailable, constants.NotAvailable
						if block.Temperatures != nil {
							minimum, maximum = orNA(block.Temperatures.Min), orNA(block.Temperatures.Max)
						}

						chance := constants.NotAvailable
						if block.Precipitation != nil {
							chance = orNA(block.Precipitation.Chance)
						}

						err := table.Append(day.Date, orNA(block.StartTime), orNA(block.EndTime),
							orNA(block.ConditionsText), minimum, maximum, chance)
						if err != nil {
							return fmt.Errorf("failed to append forecast %s: %w", day.Date, err)
						}
					}
				}

				return nil
			})
		},
	}

	where.addFlags(cmd)
	cmd.Flags().StringVar(&query.Date, "date", "", "single day (YYYY-MM-DD)")

	return cmd
}

func newWeatherObservationsCommand() *cobra.Command {
	var (
		where location
		query awhere.ObservationQuery
	)

	cmd := &cobra.Command{
		Use:     "observations",
		Aliases: []string{"observed"},
		Short:   "Show observed weather",
		RunE: func(cmd *cobra.Command, args []string) error {
			atCoordinates, latitude, longitude, err := where.coordinates()
			if err != nil {
				return err
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			ctx := context.Background()

			var list *awhere.ObservationList
			if atCoordinates {
				list, err = client.Weather().ObservationsAt(ctx, latitude, longitude, &query)
			} else {
				list, err = client.Weather().Observations(ctx, where.fieldID, &query)
			}

			if err != nil {
				return fmt.Errorf("failed to get observations: %w", err)
			}

			return render(cmd.OutOrStdout(), list, func(table *tablewriter.Table) error {
				table.Header("Date", "Min", "Max", "Precipitation", "Solar")

				for _, observation := range list.Observations {
					minimum, maximum := constants.NotAvailable, constants.NotAvailable
					if observation.Temperatures != nil {
						minimum, maximum = orNA(observation.Temperatures.Min), orNA(observation.Temperatures.Max)
					}

					err := table.Append(observation.Date, minimum, maximum,
						orNA(observation.Precipitation), orNA(observation.Solar))
					if err != nil {
						return fmt.Errorf("failed to append observation %s: %w", observation.Date, err)
					}
				}

				return nil
			})
		},
	}

	where.addFlags(cmd)
	cmd.Flags().StringVar(&query.StartDate, "start", "", "first day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&query.EndDate, "end", "", "last day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&query.Limit, "limit", 0, "maximum number of days")

	return cmd
}
