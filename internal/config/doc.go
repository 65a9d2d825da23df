// Package config loads, normalizes, and validates aura service configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// AURA_* environment overrides. The Config type centralizes every knob the API
// server and CLI need: data locations, default LLM settings, the remote
// gateway endpoint, reverse-engineering model selections, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
