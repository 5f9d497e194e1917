package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// ErrMultipleRoots is returned when more than one diagram root is configured
// without allow_multiple_roots.
var ErrMultipleRoots = errors.New("multiple diagram roots configured")

// ValidateConfig validates the complete configuration structure.
func ValidateConfig(cfg *Config) error {
	return newConfigurationValidator(cfg).validate()
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateRender(); err != nil {
		return err
	}
	if err := cv.validateRoots(); err != nil {
		return err
	}
	if err := cv.validateTheme(); err != nil {
		return err
	}
	if err := cv.validateBuild(); err != nil {
		return err
	}
	return cv.validateLogging()
}

func (cv *configurationValidator) validateRender() error {
	r := cv.config.Render
	switch r.Mode {
	case RenderModeServer:
		u, err := url.Parse(r.Server)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid render.server %q: must be an absolute http(s) URL", r.Server)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid render.server scheme %q: must be http or https", u.Scheme)
		}
	case RenderModeLocal:
		if strings.TrimSpace(r.BinPath) == "" {
			return errors.New("render.bin_path is required when render.mode is local")
		}
	default:
		return fmt.Errorf("invalid render.mode: %s (valid: server, local)", r.Mode)
	}
	switch r.OutputFormat {
	case OutputFormatPNG, OutputFormatSVG:
	default:
		return fmt.Errorf("invalid render.output_format: %s (valid: png, svg)", r.OutputFormat)
	}
	if err := validatePositiveDuration("render.timeout", r.Timeout); err != nil {
		return err
	}
	return nil
}

func (cv *configurationValidator) validateRoots() error {
	r := cv.config.Roots
	roots := r.AllRoots()
	if len(roots) == 0 {
		return errors.New("at least one diagram root must be configured")
	}
	if len(roots) > 1 && !r.AllowMultipleRoots {
		return fmt.Errorf("%w: %d roots found, set roots.allow_multiple_roots to build them all", ErrMultipleRoots, len(roots))
	}
	if err := validateRelativeFolder("roots.input_folder", r.InputFolder, true); err != nil {
		return err
	}
	if err := validateRelativeFolder("roots.output_folder", r.OutputFolder, false); err != nil {
		return err
	}
	for _, d := range r.ExcludeDirs {
		if strings.ContainsAny(d, `/\`) {
			return fmt.Errorf("invalid roots.exclude_dirs entry %q: must be a directory name, not a path", d)
		}
	}
	return nil
}

func (cv *configurationValidator) validateTheme() error {
	t := cv.config.Theme
	if !t.Enabled {
		return nil
	}
	if filepath.Base(t.Light) != t.Light || filepath.Base(t.Dark) != t.Dark {
		return errors.New("theme.light and theme.dark must be file names without directories")
	}
	if t.Light == t.Dark {
		return fmt.Errorf("theme.light and theme.dark must differ (both %q)", t.Light)
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	b := cv.config.Build
	switch b.RetryBackoff {
	case RetryBackoffFixed, RetryBackoffLinear, RetryBackoffExponential:
	default:
		return fmt.Errorf("invalid build.retry_backoff: %s (valid: fixed, linear, exponential)", b.RetryBackoff)
	}
	if err := validatePositiveDuration("build.retry_initial_delay", b.RetryInitialDelay); err != nil {
		return err
	}
	if err := validatePositiveDuration("build.retry_max_delay", b.RetryMaxDelay); err != nil {
		return err
	}
	initial, _ := time.ParseDuration(b.RetryInitialDelay)
	maxDelay, _ := time.ParseDuration(b.RetryMaxDelay)
	if maxDelay < initial {
		return fmt.Errorf("build.retry_max_delay (%s) must be >= build.retry_initial_delay (%s)", maxDelay, initial)
	}
	return nil
}

func (cv *configurationValidator) validateLogging() error {
	l := cv.config.Logging
	switch l.Level {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("invalid logging.level: %s (valid: %s)", l.Level, strings.Join(logLevelNormalizer.ValidKeys(), ", "))
	}
	switch l.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("invalid logging.format: %s (valid: %s)", l.Format, strings.Join(logFormatNormalizer.ValidKeys(), ", "))
	}
	return nil
}

func validatePositiveDuration(field, raw string) error {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s duration: %w", field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%s must be positive, got %s", field, d)
	}
	return nil
}

func validateRelativeFolder(field, folder string, allowEmpty bool) error {
	if folder == "" {
		if allowEmpty {
			return nil
		}
		return fmt.Errorf("%s must not be empty", field)
	}
	if filepath.IsAbs(folder) {
		return fmt.Errorf("%s must be relative, got %s", field, folder)
	}
	if clean := filepath.Clean(folder); clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s must stay inside the diagram root, got %s", field, folder)
	}
	return nil
}
