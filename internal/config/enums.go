package config

import (
	"strings"

	"git.home.luguber.info/inful/plantbuild/internal/foundation/normalization"
)

// RenderMode selects the rendering backend.
type RenderMode string

const (
	RenderModeServer RenderMode = "server" // HTTP GET against a PlantUML server
	RenderModeLocal  RenderMode = "local"  // local plantuml executable
)

var renderModeNormalizer = normalization.NewNormalizer(map[string]RenderMode{
	"server": RenderModeServer,
	"remote": RenderModeServer,
	"local":  RenderModeLocal,
}, "")

// NormalizeRenderMode canonicalizes user input returning empty string if unknown.
func NormalizeRenderMode(raw string) RenderMode {
	return renderModeNormalizer.Normalize(raw)
}

// OutputFormat is the artifact format requested from the backend.
type OutputFormat string

const (
	OutputFormatPNG OutputFormat = "png"
	OutputFormatSVG OutputFormat = "svg"
)

var outputFormatNormalizer = normalization.NewNormalizer(map[string]OutputFormat{
	"png": OutputFormatPNG,
	"svg": OutputFormatSVG,
}, "", func(s string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
})

// NormalizeOutputFormat canonicalizes user input returning empty string if unknown.
func NormalizeOutputFormat(raw string) OutputFormat {
	return outputFormatNormalizer.Normalize(raw)
}

// RetryBackoffMode enumerates supported backoff strategies for transport retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts arbitrary user input (case-insensitive) into a RetryBackoffMode.
// Unknown values return empty string so callers can decide on fallback/default behavior.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

// LogLevel is the minimum slog level emitted by the CLI.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, "")

// NormalizeLogLevel canonicalizes user input returning empty string if unknown.
func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat selects the slog handler.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"text": LogFormatText,
	"json": LogFormatJSON,
}, "")

// NormalizeLogFormat canonicalizes user input returning empty string if unknown.
func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}
