// Package config loads and validates the labelspool configuration.
//
// Configuration lives in a single TOML file. Load applies repository
// defaults, decodes the file when present, expands and normalizes paths, and
// validates the result so the rest of the program can trust every field.
package config
