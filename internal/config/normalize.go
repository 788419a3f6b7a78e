package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSources(); err != nil {
		return err
	}
	c.normalizeIngest()
	c.normalizeGold()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.IncomingDir, err = expandPath(c.Paths.IncomingDir); err != nil {
		return fmt.Errorf("paths.incoming_dir: %w", err)
	}
	if c.Paths.BronzeDir, err = expandPath(c.Paths.BronzeDir); err != nil {
		return fmt.Errorf("paths.bronze_dir: %w", err)
	}
	if c.Paths.LakeDir, err = expandPath(c.Paths.LakeDir); err != nil {
		return fmt.Errorf("paths.lake_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() error {
	var err error
	if c.Sources.ContractsFile, err = expandPath(c.Sources.ContractsFile); err != nil {
		return fmt.Errorf("sources.contracts_file: %w", err)
	}
	if c.Sources.MappingsFile, err = expandPath(c.Sources.MappingsFile); err != nil {
		return fmt.Errorf("sources.mappings_file: %w", err)
	}
	return nil
}

func (c *Config) normalizeIngest() {
	c.Ingest.ReadyMarker = strings.TrimSpace(c.Ingest.ReadyMarker)
	if c.Ingest.ReadyMarker == "" {
		c.Ingest.ReadyMarker = defaultReadyMarker
	}
}

func (c *Config) normalizeGold() {
	normalized := make([]string, 0, len(c.Gold.ProviderPrecedence))
	for _, provider := range c.Gold.ProviderPrecedence {
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider != "" {
			normalized = append(normalized, provider)
		}
	}
	c.Gold.ProviderPrecedence = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
