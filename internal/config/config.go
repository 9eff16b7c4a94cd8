// Package config provides configuration types and defaults for opticshield.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/opticshield/opticshield/internal/log"
)

// DefaultBaseURL is used when neither flag, environment nor config file
// names a registry.
const DefaultBaseURL = "http://localhost:5000"

// Environment variables consulted for the registry base URL, highest
// precedence first.
var BaseURLEnvVars = []string{"OPTICSHIELD_API_URL", "VITE_API_URL"}

// Config holds all configuration options for opticshield.
type Config struct {
	BaseURL    string          `mapstructure:"base_url"`
	AutoReload bool            `mapstructure:"auto_reload"` // watch the config file for base_url changes
	Image      ImageConfig     `mapstructure:"image"`
	Tracing    TracingConfig   `mapstructure:"tracing"`
	Theme      ThemeConfig     `mapstructure:"theme"`
	Flags      map[string]bool `mapstructure:"flags"`
}

// ImageConfig controls how attached photos are embedded.
type ImageConfig struct {
	// MaxDimension bounds the longer side in pixels. 0 embeds the file as is.
	MaxDimension int `mapstructure:"max_dimension"`
	// JPEGQuality is used when a downscaled JPEG is re-encoded (1-100).
	JPEGQuality int `mapstructure:"jpeg_quality"`
}

// ThemeConfig overrides individual colours. Empty values keep the defaults.
type ThemeConfig struct {
	Muted   string `mapstructure:"muted"`
	Error   string `mapstructure:"error"`
	Success string `mapstructure:"success"`
}

// TracingConfig holds tracing configuration for registry calls.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	// Default: ~/.config/opticshield/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// DefaultTracesFilePath returns ~/.config/opticshield/traces/traces.jsonl, or
// "" when the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "opticshield", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		AutoReload: true,
		Image: ImageConfig{
			MaxDimension: 0,
			JPEGQuality:  85,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

// ResolveBaseURL picks the registry base URL: flag value, then the first
// non-empty environment variable in BaseURLEnvVars, then the config file
// value, then DefaultBaseURL. A trailing slash is removed.
func ResolveBaseURL(flagValue, configValue string) string {
	candidates := []string{flagValue}
	for _, name := range BaseURLEnvVars {
		candidates = append(candidates, os.Getenv(name))
	}
	candidates = append(candidates, configValue, DefaultBaseURL)

	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return strings.TrimRight(c, "/")
		}
	}
	return DefaultBaseURL
}

// ValidateBaseURL requires an absolute http or https URL with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url must include a host, got %q", raw)
	}
	return nil
}

// ValidateImage checks image options.
func ValidateImage(img ImageConfig) error {
	if img.MaxDimension < 0 {
		return fmt.Errorf("image.max_dimension must not be negative, got %d", img.MaxDimension)
	}
	if img.JPEGQuality != 0 && (img.JPEGQuality < 1 || img.JPEGQuality > 100) {
		return fmt.Errorf("image.jpeg_quality must be between 1 and 100, got %d", img.JPEGQuality)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Validate checks the whole configuration. An empty BaseURL is allowed and
// resolves to the default later.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		if err := ValidateBaseURL(c.BaseURL); err != nil {
			return err
		}
	}
	if err := ValidateImage(c.Image); err != nil {
		return err
	}
	return ValidateTracing(c.Tracing)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# OpticShield Configuration

# Person registry service. Overridden by --base-url, OPTICSHIELD_API_URL
# or VITE_API_URL.
base_url: http://localhost:5000

# Reload base_url when this file changes while the UI is running
auto_reload: true

# Attached photos
image:
  max_dimension: 0    # Downscale so the longer side fits (0 = embed unchanged)
  jpeg_quality: 85    # Quality for re-encoded JPEGs (1-100)

# Colour overrides
# theme:
#   muted: "#696969"
#   error: "#FF8787"
#   success: "#73F59F"

# Feature flags
# flags:
#   send-person-id: false   # Send the form's Person ID as personId on create

# Tracing of registry calls
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/opticshield/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
