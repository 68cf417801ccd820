// Package config handles loading and parsing of configuration from CLI flags,
// YAML files and environment variables. It defines the application configuration
// structure including the listen address, response delay and format, dashboard
// refresh cadence, and logging destination.
package config
