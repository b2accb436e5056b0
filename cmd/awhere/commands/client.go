package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/awhere-client/internal/constants"
	"github.com/fivetwenty-io/awhere-client/pkg/awhere"
	"github.com/fivetwenty-io/awhere-client/pkg/awhereclient"
)

// zerologLogger adapts a zerolog.Logger to awhere.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// NewLogger returns a console logger on stderr. Verbose enables debug
// messages; otherwise only warnings and errors are shown.
func NewLogger(verbose bool) awhere.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("component", "awhere").Logger()

	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}

// buildClientConfig maps the effective CLI configuration onto awhere.Config.
func buildClientConfig() (*awhere.Config, error) {
	config := loadConfig()

	if config.Key == "" || config.Secret == "" {
		return nil, constants.ErrNoCredentials
	}

	verbose := viper.GetBool("verbose")

	return &awhere.Config{
		APIEndpoint:       config.API,
		Key:               config.Key,
		Secret:            config.Secret,
		RetryMax:          config.RetryMax,
		RequestsPerSecond: config.RequestsPerSecond,
		Debug:             config.Debug || verbose,
		Logger:            NewLogger(verbose || config.Debug),
	}, nil
}

// CreateClient creates an aWhere client from the CLI configuration.
func CreateClient() (awhere.Client, error) {
	config, err := buildClientConfig()
	if err != nil {
		return nil, err
	}

	client, err := awhereclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
