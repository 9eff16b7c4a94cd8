package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ApplyDefaults registers Defaults() on v so unset keys unmarshal to them.
func ApplyDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("auto_reload", d.AutoReload)
	v.SetDefault("image.max_dimension", d.Image.MaxDimension)
	v.SetDefault("image.jpeg_quality", d.Image.JPEGQuality)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// ReadFile loads the config file at path on top of the defaults. It is
// used when the file changes while the UI is running, so it does not touch
// the global viper instance.
func ReadFile(path string) (Config, error) {
	v := viper.New()
	ApplyDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
