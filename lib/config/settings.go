package config

import (
	"fmt"
)

// GlobalOptions are accepted by every command.
type GlobalOptions struct {
	ConfigFilePath string `short:"c" long:"config" description:"path to the config file"`
	Verbose        bool   `short:"v" long:"verbose" description:"debug logging"`
}

type Settings struct {
	Config         Config
	VerboseLogging bool
}

// LoadSettings reads the optional config file, fills in defaults and validates the result.
func LoadSettings(opts GlobalOptions) (*Settings, error) {
	settings := &Settings{
		VerboseLogging: opts.Verbose,
	}

	if opts.ConfigFilePath != "" {
		config, err := readFileToConfig(opts.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		settings.Config = *config
	}

	settings.Config.LoadDefaultValues()
	if err := settings.Config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate config: %w", err)
	}

	return settings, nil
}
