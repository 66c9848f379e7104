package config

import (
	"cmp"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/artie-labs/ingest/lib/config/constants"
)

func readFileToConfig(pathToConfig string) (*Config, error) {
	file, err := os.Open(pathToConfig)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	var config Config
	if err = yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadDefaultValues fills in everything that the config file is allowed to omit.
func (c *Config) LoadDefaultValues() {
	c.Source.FHVBaseURL = cmp.Or(c.Source.FHVBaseURL, constants.DefaultFHVBaseURL)
	c.Source.TripBaseURL = cmp.Or(c.Source.TripBaseURL, constants.DefaultTripBaseURL)
	c.Source.ZoneLookupURL = cmp.Or(c.Source.ZoneLookupURL, constants.DefaultZoneLookupURL)

	if c.Download.TimeoutSeconds == 0 {
		c.Download.TimeoutSeconds = int(constants.DefaultDownloadTimeout.Seconds())
	}

	if c.Download.MaxAttempts == 0 {
		c.Download.MaxAttempts = 1
	}
}

func (d Download) Timeout() time.Duration {
	return time.Duration(d.TimeoutSeconds) * time.Second
}

// Validate only checks settings shared by every job, each job validates its own options before doing any I/O.
func (c Config) Validate() error {
	if c.Download.TimeoutSeconds <= 0 {
		return fmt.Errorf("download timeout must be a positive number, current value: %d", c.Download.TimeoutSeconds)
	}

	if c.Download.MaxAttempts <= 0 {
		return fmt.Errorf("download max attempts must be a positive number, current value: %d", c.Download.MaxAttempts)
	}

	for name, value := range map[string]string{
		"source.fhvBaseURL":    c.Source.FHVBaseURL,
		"source.tripBaseURL":   c.Source.TripBaseURL,
		"source.zoneLookupURL": c.Source.ZoneLookupURL,
	} {
		if value == "" {
			return fmt.Errorf("%s cannot be empty", name)
		}
	}

	if kind := c.Telemetry.Metrics.Provider; kind != "" && kind != constants.Datadog {
		return fmt.Errorf("invalid metrics provider: %q", kind)
	}

	return nil
}
