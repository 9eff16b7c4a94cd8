package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/opticshield/opticshield/internal/app"
	"github.com/opticshield/opticshield/internal/config"
	"github.com/opticshield/opticshield/internal/encoder"
	"github.com/opticshield/opticshield/internal/flags"
	"github.com/opticshield/opticshield/internal/log"
	"github.com/opticshield/opticshield/internal/registry"
	"github.com/opticshield/opticshield/internal/tracing"
	"github.com/opticshield/opticshield/internal/ui/styles"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// defaultConfigPath is where a config file is created when none is found.
const defaultConfigPath = ".opticshield/config.yaml"

var (
	version     = "dev"
	cfgFile     string
	baseURLFlag string
	debugFlag   bool
	cfg         config.Config
)

var rootCmd = &cobra.Command{
	Use:     "opticshield",
	Short:   "A terminal client for the OpticShield person registry",
	Long:    `A terminal user interface for adding persons to the OpticShield registry and managing their whitelist, blacklist and watchlist classification.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/opticshield/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "",
		"registry base URL (overrides OPTICSHIELD_API_URL and the config file)")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false,
		"write debug logs to $OPTICSHIELD_LOG (default: debug.log)")
	rootCmd.Flags().Bool("no-auto-reload", false,
		"do not reload base_url when the config file changes")
}

func initConfig() {
	config.ApplyDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .opticshield/config.yaml (current directory)
		// 2. ~/.config/opticshield/config.yaml (user config)
		if _, err := os.Stat(defaultConfigPath); err == nil {
			viper.SetConfigFile(defaultConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "opticshield"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .opticshield/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if writeErr := config.WriteDefaultConfig(defaultConfigPath); writeErr == nil {
				viper.SetConfigFile(defaultConfigPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	cfg = config.Config{}
	_ = viper.Unmarshal(&cfg)
}

// configFilePath is the file config:set-url edits and the UI watches.
func configFilePath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return defaultConfigPath
}

// startLogging enables the file logger when --debug or OPTICSHIELD_DEBUG is
// set. The returned function is never nil.
func startLogging() func() {
	if !log.DebugEnabled(debugFlag) {
		return func() {}
	}
	cleanup, err := log.InitWithTeaLog(log.LogPath(), "opticshield")
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: debug log unavailable: %v\n", err)
		return func() {}
	}
	return func() {
		log.Reset()
		cleanup()
	}
}

// clients bundles the registry client with the tracing that wraps it.
type clients struct {
	http     *registry.HTTPClient
	registry registry.Registry
	tracing  *tracing.Provider
}

func (c clients) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.tracing.Shutdown(ctx); err != nil {
		log.ErrorErr(log.CatTrace, "flushing traces failed", err)
	}
}

// newClients validates the loaded config and builds the registry client.
func newClients() (clients, error) {
	if err := cfg.Validate(); err != nil {
		return clients{}, fmt.Errorf("invalid configuration: %w", err)
	}

	baseURL := config.ResolveBaseURL(baseURLFlag, cfg.BaseURL)
	if err := config.ValidateBaseURL(baseURL); err != nil {
		return clients{}, err
	}

	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return clients{}, fmt.Errorf("initializing tracing: %w", err)
	}

	httpClient := registry.NewHTTPClient(baseURL, registry.WithFlags(flags.New(cfg.Flags)))
	var reg registry.Registry = httpClient
	if provider.Enabled() {
		reg = registry.Traced(httpClient, provider.Tracer())
	}
	log.Info(log.CatConfig, "registry configured", "base_url", baseURL, "tracing", provider.Enabled())
	return clients{http: httpClient, registry: reg, tracing: provider}, nil
}

func newEncoder() *encoder.Encoder {
	return encoder.New(encoder.Options{
		MaxDimension: cfg.Image.MaxDimension,
		JPEGQuality:  cfg.Image.JPEGQuality,
	})
}

func runApp(cmd *cobra.Command, args []string) error {
	stopLogging := startLogging()
	defer stopLogging()

	c, err := newClients()
	if err != nil {
		return err
	}
	defer c.close()

	autoReload := cfg.AutoReload
	// Handle --no-auto-reload flag (negated logic)
	if noAutoReload, _ := cmd.Flags().GetBool("no-auto-reload"); noAutoReload {
		autoReload = false
	}

	styles.ApplyTheme(cfg.Theme.Muted, cfg.Theme.Error, cfg.Theme.Success)
	zone.NewGlobal()

	model := app.New(app.Options{
		Registry:    c.registry,
		Client:      c.http,
		Encoder:     newEncoder(),
		ConfigPath:  viper.ConfigFileUsed(),
		AutoReload:  autoReload,
		BaseURLFlag: baseURLFlag,
		Debug:       log.DebugEnabled(debugFlag),
	})
	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err = p.Run()

	// Clean up watcher resources
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
