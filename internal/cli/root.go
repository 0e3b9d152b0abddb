package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/eualt/trustscore/internal/logging"
	"github.com/eualt/trustscore/internal/model"
)

// Version is overridden at build time with -ldflags "-X ..."
var Version = "v0.3.0"

var (
	cfgFile  string
	verbose  bool
	logLevel string

	// configErr holds a config file read failure for loadConfig to report
	configErr error

	// Set by the root pre-run hook before any subcommand runs
	activeConfig = model.DefaultConfig()
	logger       = zerolog.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "trustscore",
	Short: "trustscore - reproducible trust scores for digital service catalogs",
	Long: `trustscore computes a 0-10 trust score for each catalog entry from its
jurisdiction, its reservations (negative evidence) and its positive signals.

Entries with curated evidence get a ready score with a full, auditable
breakdown. Entries without it get a pending heuristic estimate.

Scores are deterministic: the same entry and configuration always yield the
same score and breakdown.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		activeConfig = cfg
		logger = newLogger(cfg)
		logging.SetGlobalLogger(logger)
		return nil
	},
}

// Execute runs the root command; cancelling ctx stops in-flight work
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trustscore %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.trustscore/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	configErr = nil
	viper.SetConfigType("yaml")

	// Seed every key with its default so TRUSTSCORE_* variables can override any of them
	defaults, err := yaml.Marshal(model.DefaultConfig())
	if err == nil {
		err = viper.ReadConfig(bytes.NewReader(defaults))
	}
	if err != nil {
		configErr = fmt.Errorf("load defaults: %w", err)
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(filepath.Join(home, ".trustscore"))
			viper.SetConfigName("config")
		}
	}

	viper.SetEnvPrefix("TRUSTSCORE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	_ = viper.BindEnv("llm.api_key") // never part of the seeded defaults

	if err := viper.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			configErr = fmt.Errorf("read config: %w", err)
		}
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig returns the effective configuration: flags, env, file, then defaults
func loadConfig() (*model.Config, error) {
	if configErr != nil {
		return nil, &ExitError{Code: exitInput, Err: configErr}
	}

	// viper already holds every default, so decode into a zero value
	// and keep stale list elements out of the result
	var cfg model.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, &ExitError{Code: exitInput, Err: fmt.Errorf("decode config: %w", err)}
	}
	return &cfg, nil
}

func newLogger(cfg *model.Config) zerolog.Logger {
	level := cfg.Output.LogLevel
	if cfg.Output.Verbose && logLevel == "" {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:  level,
		Pretty: cfg.Output.LogPretty,
	})
}
