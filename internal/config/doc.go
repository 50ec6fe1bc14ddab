// Package config loads, normalizes, and validates declutter configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files from an explicit path or the standard
// locations. The Config type centralizes every knob the CLI needs: the
// destination root, logging preferences, and the category table used to
// classify files by extension.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and a validated category table.
package config
