package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
)

const (
	configDirName  = ".awhere"
	configFileName = "config.yml"
	envPrefix      = "AWHERE"
	configArgCount = 2
)

// Config represents the CLI configuration.
type Config struct {
	API               string  `json:"api,omitempty"                 yaml:"api,omitempty"`
	Key               string  `json:"key,omitempty"                 yaml:"key,omitempty"`
	Secret            string  `json:"secret,omitempty"              yaml:"secret,omitempty"`
	Output            string  `json:"output,omitempty"              yaml:"output,omitempty"`
	RetryMax          int     `json:"retry_max,omitempty"           yaml:"retry_max,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Debug             bool    `json:"debug,omitempty"               yaml:"debug,omitempty"`
}

// configKeys lists the settable keys in display order.
var configKeys = []string{"api", "key", "secret", "output", "retry_max", "requests_per_second", "debug"}

// InitConfig loads .env, the config file and AWHERE_* environment variables
// into viper. A missing config file is not an error.
func InitConfig(cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := defaultConfigDir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("failed to read config file: %w", err)
	}

	if viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	return nil
}

func defaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	configDir, err := defaultConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, configFileName), nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the endpoint, credentials and defaults the CLI uses",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigClearCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	var showSecret bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration from flags, environment and the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			if !showSecret && config.Secret != "" {
				config.Secret = constants.MaskedSecret
			}

			return render(cmd.OutOrStdout(), config, func(table *tablewriter.Table) error {
				table.Header("Key", "Value")

				values := configValues(config)
				for _, key := range configKeys {
					err := table.Append(key, orNA(values[key]))
					if err != nil {
						return fmt.Errorf("failed to append %s: %w", key, err)
					}
				}

				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&showSecret, "show-secret", false, "print the API secret instead of masking it")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys, ", "),
		Args:  cobra.ExactArgs(configArgCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			display := args[1]
			if args[0] == "secret" {
				display = constants.MaskedSecret
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %s\n", args[0], display)

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func newConfigClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear configuration",
		Long:  "Remove the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, err := configFilePath()
			if err != nil {
				return err
			}

			err = os.Remove(configFile)
			if err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove config file: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cleared all configuration")

			return nil
		},
	}
}

func loadConfig() *Config {
	return &Config{
		API:               viper.GetString("api"),
		Key:               viper.GetString("key"),
		Secret:            viper.GetString("secret"),
		Output:            viper.GetString("output"),
		RetryMax:          viper.GetInt("retry_max"),
		RequestsPerSecond: viper.GetFloat64("requests_per_second"),
		Debug:             viper.GetBool("debug"),
	}
}

func configValues(config *Config) map[string]interface{} {
	values := map[string]interface{}{
		"api":    config.API,
		"key":    config.Key,
		"secret": config.Secret,
		"output": config.Output,
		"debug":  config.Debug,
	}

	if config.RetryMax != 0 {
		values["retry_max"] = config.RetryMax
	}

	if config.RequestsPerSecond != 0 {
		values["requests_per_second"] = config.RequestsPerSecond
	}

	return values
}

// setConfigValue sets key on config; an empty value resets it.
func setConfigValue(config *Config, key, value string) error {
	var err error

	switch key {
	case "api":
		config.API = value
	case "key":
		config.Key = value
	case "secret":
		config.Secret = value
	case "output":
		if value != "" && value != constants.FormatTable && value != constants.FormatJSON && value != constants.FormatYAML {
			return fmt.Errorf("%w: %s", constants.ErrUnknownOutputFormat, value)
		}

		config.Output = value
	case "retry_max":
		config.RetryMax, err = cast.ToIntE(emptyAsZero(value))
	case "requests_per_second":
		config.RequestsPerSecond, err = cast.ToFloat64E(emptyAsZero(value))
	case "debug":
		config.Debug, err = cast.ToBoolE(emptyAsFalse(value))
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	return nil
}

func emptyAsZero(value string) string {
	if value == "" {
		return "0"
	}

	return value
}

func emptyAsFalse(value string) string {
	if value == "" {
		return "false"
	}

	return value
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
