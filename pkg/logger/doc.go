// Package logger provides structured JSON logging with configurable log levels.
// It wraps the standard log/slog package and writes to an injected
// destination, since the terminal belongs to the dashboard at runtime.
package logger
