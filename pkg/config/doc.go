// Package config loads runtime settings from the environment with an
// optional YAML overlay file.
package config
