// Package logger builds the structured slog logger shared by every
// component, with JSON output in production and text output elsewhere.
package logger
