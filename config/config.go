package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalid marks every error caused by bad configuration input.
var ErrInvalid = errors.New("invalid configuration")

// Default returns the settings used when no config file is given.
func Default() *Config {
	return &Config{
		Monitoring: DefaultMonitoringConfig,
		Logging:    DefaultLoggingConfig,
	}
}

func LoadConfig(path string) (*Config, error) {
	config, err := readConfig(path)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	return config, nil
}

func readConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: config file path is required (use --config-file)", ErrInvalid)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %w", ErrInvalid, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %w", ErrInvalid, err)
	}

	// An email_alerts section that sets nothing leaves alerting off.
	if config.EmailAlerts != nil && *config.EmailAlerts == DefaultEmailAlertConfig {
		config.EmailAlerts = nil
	}

	return config, nil
}

func (c *Config) UnmarshalYAML(unmarshall func(interface{}) error) error {
	type raw Config
	r := raw{
		Monitoring: DefaultMonitoringConfig,
		Logging:    DefaultLoggingConfig,
	}

	if err := unmarshall(&r); err != nil {
		return err
	}

	*c = Config(r)

	return nil
}

func (e *EmailAlertConfig) UnmarshalYAML(unmarshall func(interface{}) error) error {
	type raw EmailAlertConfig
	r := raw(DefaultEmailAlertConfig)

	if err := unmarshall(&r); err != nil {
		return err
	}

	*e = EmailAlertConfig(r)

	return nil
}
