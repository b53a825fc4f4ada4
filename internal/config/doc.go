// Package config loads, normalizes, and validates aerial configuration.
//
// Values come from a TOML file (default ~/.config/aerial/config.toml or
// ./aerial.toml) overlaid with environment variables. The config is built
// once at startup and treated as immutable afterwards.
package config
