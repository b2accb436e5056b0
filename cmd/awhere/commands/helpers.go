package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
)

const (
	// JSON formatting.
	defaultJSONIndent = 2

	coordinateArgs = 2
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidLatitude    = errors.New("invalid latitude")
	ErrInvalidLongitude   = errors.New("invalid longitude")
	ErrInvalidParam       = errors.New("invalid parameter, expected key=value")
	ErrFieldOrCoordinates = errors.New("use --field or both --lat and --lng")
)

// outputFormat returns the configured output format.
func outputFormat() (string, error) {
	format := strings.ToLower(viper.GetString("output"))
	switch format {
	case "", constants.FormatTable:
		return constants.FormatTable, nil
	case constants.FormatJSON, constants.FormatYAML:
		return format, nil
	default:
		return "", fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, format)
	}
}

// render writes data as JSON or YAML, or calls table for table output.
func render(out io.Writer, data interface{}, table func(*tablewriter.Table) error) error {
	format, err := outputFormat()
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return renderJSON(out, data)
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(out)

		err := encoder.Encode(data)
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}

		return encoder.Close()
	default:
		t := tablewriter.NewWriter(out)

		err := table(t)
		if err != nil {
			return err
		}

		err = t.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	}
}

func renderJSON(out io.Writer, data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", strings.Repeat(" ", defaultJSONIndent))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}

	return nil
}

// parseCoordinates parses "LAT LNG" arguments. Zero is rejected because the
// service cannot resolve it to a field.
func parseCoordinates(latArg, lngArg string) (float64, float64, error) {
	latitude, err := strconv.ParseFloat(latArg, 64)
	if err != nil || latitude < -90 || latitude > 90 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLatitude, latArg)
	}

	longitude, err := strconv.ParseFloat(lngArg, 64)
	if err != nil || longitude < -180 || longitude > 180 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidLongitude, lngArg)
	}

	if latitude == 0 || longitude == 0 {
		return 0, 0, constants.ErrCoordinatesInvalid
	}

	return latitude, longitude, nil
}

// parseParams turns key=value arguments into request parameters. Repeated
// keys become lists.
func parseParams(args []string) (awhere.Params, error) {
	params := awhere.Params{}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParam, arg)
		}

		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case []string:
			params[key] = append(existing, value)
		default:
			params[key] = []string{cast.ToString(existing), value}
		}
	}

	return params, nil
}

// orNA formats optional values for tables.
func orNA(value interface{}) string {
	switch typed := value.(type) {
	case nil:
		return constants.NotAvailable
	case *float64:
		if typed == nil {
			return constants.NotAvailable
		}

		return strconv.FormatFloat(*typed, 'f', -1, 64)
	case *awhere.Measurement:
		if typed == nil || typed.Amount == nil {
			return constants.NotAvailable
		}

		return strings.TrimSpace(strconv.FormatFloat(*typed.Amount, 'f', -1, 64) + " " + typed.Units)
	}

	text := cast.ToString(value)
	if text == "" {
		return constants.NotAvailable
	}

	return text
}
