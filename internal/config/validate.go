package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateIngest(); err != nil {
		return err
	}
	if err := c.validateGold(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.IncomingDir == "" {
		return errors.New("paths.incoming_dir must be set")
	}
	if c.Paths.BronzeDir == "" {
		return errors.New("paths.bronze_dir must be set")
	}
	if c.Paths.LakeDir == "" {
		return errors.New("paths.lake_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSources() error {
	if c.Sources.ContractsFile == "" {
		return errors.New("sources.contracts_file must be set")
	}
	if c.Sources.MappingsFile == "" {
		return errors.New("sources.mappings_file must be set")
	}
	return nil
}

func (c *Config) validateIngest() error {
	if c.Ingest.QuarantineSeconds < 0 {
		return errors.New("ingest.quarantine_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateGold() error {
	seen := make(map[string]struct{}, len(c.Gold.ProviderPrecedence))
	for _, provider := range c.Gold.ProviderPrecedence {
		if _, dup := seen[provider]; dup {
			return fmt.Errorf("gold.provider_precedence lists %q more than once", provider)
		}
		seen[provider] = struct{}{}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
