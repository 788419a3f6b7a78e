// Package config loads, normalizes, and validates cinelake configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the CINELAKE_CONFIG environment
// fallback. The Config type centralizes every knob the pipeline and CLI
// need: lake directories, the contract and mapping source locations,
// readiness marker settings, and the provider precedence used by the gold
// merge.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
